package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/product"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients",
}

var clientAddCmd = &cobra.Command{
	Use:   "add <company name>",
	Short: "Add a client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE:  runClientList,
}

var clientRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Deactivate a client; its invoices and statements are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientRemove,
}

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the product catalogue",
}

var productAddCmd = &cobra.Command{
	Use:   "add <name> <unit price>",
	Short: "Add a product",
	Args:  cobra.ExactArgs(2),
	RunE:  runProductAdd,
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE:  runProductList,
}

func init() {
	rootCmd.AddCommand(clientCmd, productCmd)
	clientCmd.AddCommand(clientAddCmd, clientListCmd, clientRemoveCmd)
	productCmd.AddCommand(productAddCmd, productListCmd)

	f := clientAddCmd.Flags()
	f.String("contact", "", "Contact person")
	f.String("email", "", "Billing email address")
	f.String("phone", "", "Phone number")
	f.String("address", "", "Billing address")
	f.String("vat", "", "VAT number")

	f = clientListCmd.Flags()
	f.String("search", "", "Name, contact or email contains")
	f.Bool("all", false, "Include inactive clients")

	f = productAddCmd.Flags()
	f.String("sku", "", "Stock keeping unit; unique when set")
	f.String("description", "", "Description appended to the invoice line")
	f.String("tax-rate", "", "Tax rate in percent (default: settings tax rate)")

	f = productListCmd.Flags()
	f.String("search", "", "Name or SKU contains")
	f.Bool("all", false, "Include inactive products")
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}

	c := &client.Client{CompanyName: args[0]}
	c.ContactPerson, _ = cmd.Flags().GetString("contact")
	c.Email, _ = cmd.Flags().GetString("email")
	c.Phone, _ = cmd.Flags().GetString("phone")
	c.BillingAddress, _ = cmd.Flags().GetString("address")
	c.VatNumber, _ = cmd.Flags().GetString("vat")

	if err := engine.CreateClient(ctx, c); err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, c)
	}
	fmt.Fprintf(cli.out, "Added client %s (%s)\n", c.CompanyName, c.ID)
	return nil
}

func runClientList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	search, _ := cmd.Flags().GetString("search")
	all, _ := cmd.Flags().GetBool("all")

	clients, err := engine.ListClients(ctx, client.ListOpts{ActiveOnly: !all, Search: search})
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, clients)
	}
	t := newTable(cli.out, "COMPANY", "CONTACT", "EMAIL", "ACTIVE", "ID")
	for _, c := range clients {
		t.row(c.CompanyName, c.ContactPerson, c.Email, c.IsActive, c.ID)
	}
	return t.flush()
}

func runClientRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	clientID, err := id.ParseClientID(args[0])
	if err != nil {
		return err
	}
	if err := engine.DeleteClient(ctx, clientID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Deactivated client %s\n", clientID)
	return nil
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	price, err := moneyArg(args[1], cfg.Currency())
	if err != nil {
		return err
	}
	rate, err := decimalFlag(cmd, "tax-rate")
	if err != nil {
		return err
	}

	p := &product.Product{Name: args[0], UnitPrice: price, TaxRate: rate}
	p.SKU, _ = cmd.Flags().GetString("sku")
	p.Description, _ = cmd.Flags().GetString("description")

	if err := engine.CreateProduct(ctx, p); err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, p)
	}
	fmt.Fprintf(cli.out, "Added product %s at %s (%s)\n", p.Name, p.UnitPrice.Display(cfg.CurrencySymbol), p.ID)
	return nil
}

func runProductList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	search, _ := cmd.Flags().GetString("search")
	all, _ := cmd.Flags().GetBool("all")

	products, err := engine.ListProducts(ctx, product.ListOpts{ActiveOnly: !all, Search: search})
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, products)
	}
	t := newTable(cli.out, "NAME", "SKU", "PRICE", "TAX %", "ID")
	for _, p := range products {
		rate := "default"
		if p.TaxRate != nil {
			rate = p.TaxRate.String()
		}
		t.row(p.Name, p.SKU, p.UnitPrice.Display(cfg.CurrencySymbol), rate, p.ID)
	}
	return t.flush()
}
