// Command folio runs the invoicing API and exposes the ledger operations on
// the command line.
package main

func main() {
	Execute()
}
