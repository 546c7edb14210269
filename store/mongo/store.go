// Package mongo provides a MongoDB-backed store.Store. Line items and
// payments are embedded in their invoice document; statement lines are
// embedded in the statement. Transactions need a replica set.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/product"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/store"
)

// Collection name constants.
const (
	colInvoices   = "folio_invoices"
	colClients    = "folio_clients"
	colProducts   = "folio_products"
	colSettings   = "folio_settings"
	colStatements = "folio_statements"
	colEmailLogs  = "folio_email_logs"
)

// Index names checked when mapping duplicate-key errors.
const (
	idxInvoiceNumber = "folio_invoices_number_key"
	idxProductSKU    = "folio_products_sku_key"
)

const settingsID = "settings"

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using the official MongoDB driver.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	inTx   bool
}

// Open connects to uri and uses database dbName.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	c, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("folio/mongo: connect: %w", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("folio/mongo: ping: %w", err)
	}
	return New(c, c.Database(dbName)), nil
}

// New creates a store on an existing client and database.
func New(c *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: c, db: db}
}

// DB returns the underlying database.
func (s *Store) DB() *mongo.Database { return s.db }

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

// Migrate creates indexes for all folio collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.col(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%w: folio/mongo: %s indexes: %w", folio.ErrMigrationFailed, col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// Tx runs fn inside a multi-document transaction. The ctx handed to fn
// carries the session; operations must use it to join the transaction.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("folio/mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	tx := &Store{client: s.client, db: s.db, inTx: true}
	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, tx)
	})
	return err
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	m.Payments = []paymentModel{}
	if _, err := s.col(colInvoices).InsertOne(ctx, m); err != nil {
		return duplicateErr(err, "create invoice")
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	return s.findInvoice(ctx, bson.M{"_id": invID.String()})
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return s.findInvoice(ctx, bson.M{"number": number})
}

func (s *Store) findInvoice(ctx context.Context, filter bson.M) (*invoice.Invoice, error) {
	var m invoiceModel
	if err := s.col(colInvoices).FindOne(ctx, filter).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("folio/mongo: get invoice: %w", err)
	}
	return fromInvoiceModel(&m)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	filter := bson.M{}
	if !opts.ClientID.IsNil() {
		filter["client_id"] = opts.ClientID.String()
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	dateRange := bson.M{}
	if !opts.From.IsZero() {
		dateRange["$gte"] = opts.From.UTC()
	}
	if !opts.To.IsZero() {
		dateRange["$lte"] = opts.To.UTC()
	}
	if len(dateRange) > 0 {
		filter["invoice_date"] = dateRange
	}
	if !opts.DueBefore.IsZero() {
		filter["due_date"] = bson.M{"$lt": opts.DueBefore.UTC()}
	}
	if opts.Number != "" {
		filter["number"] = containsRegex(opts.Number)
	}

	dir := -1
	if opts.Ascending {
		dir = 1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "invoice_date", Value: dir}, {Key: "number", Value: dir}})
	setPage(findOpts, opts.Limit, opts.Offset)

	var models []invoiceModel
	if err := s.findAll(ctx, colInvoices, filter, findOpts, &models); err != nil {
		return nil, fmt.Errorf("folio/mongo: list invoices: %w", err)
	}

	result := make([]*invoice.Invoice, 0, len(models))
	for i := range models {
		inv, err := fromInvoiceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	res, err := s.col(colInvoices).UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{"$set": bson.M{
		"number":        m.Number,
		"client_id":     m.ClientID,
		"currency":      m.Currency,
		"invoice_date":  m.InvoiceDate,
		"due_date":      m.DueDate,
		"status":        m.Status,
		"subtotal":      m.Subtotal,
		"tax_amount":    m.TaxAmount,
		"total":         m.Total,
		"line_items":    m.LineItems,
		"notes":         m.Notes,
		"payment_terms": m.PaymentTerms,
		"sent_at":       m.SentAt,
		"paid_at":       m.PaidAt,
		"updated_at":    m.UpdatedAt,
	}})
	if err != nil {
		return duplicateErr(err, "update invoice")
	}
	if res.MatchedCount == 0 {
		return folio.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, invID id.InvoiceID) error {
	if _, err := s.col(colInvoices).DeleteOne(ctx, bson.M{"_id": invID.String()}); err != nil {
		return fmt.Errorf("folio/mongo: delete invoice: %w", err)
	}
	return nil
}

func (s *Store) AddPayment(ctx context.Context, p *invoice.Payment) error {
	res, err := s.col(colInvoices).UpdateOne(ctx,
		bson.M{"_id": p.InvoiceID.String()},
		bson.M{"$push": bson.M{"payments": toPaymentModel(p)}})
	if err != nil {
		return fmt.Errorf("folio/mongo: add payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return folio.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, invID id.InvoiceID) ([]invoice.Payment, error) {
	var m invoiceModel
	err := s.col(colInvoices).FindOne(ctx, bson.M{"_id": invID.String()},
		options.FindOne().SetProjection(bson.M{"payments": 1, "currency": 1})).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("folio/mongo: list payments: %w", err)
	}
	return fromPaymentModels(invID, m.Currency, m.Payments)
}

func (s *Store) CountInvoices(ctx context.Context, clientID id.ClientID) (int, error) {
	filter := bson.M{}
	if !clientID.IsNil() {
		filter["client_id"] = clientID.String()
	}
	n, err := s.col(colInvoices).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("folio/mongo: count invoices: %w", err)
	}
	return int(n), nil
}

// ==================== Client Store ====================

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	if _, err := s.col(colClients).InsertOne(ctx, toClientModel(c)); err != nil {
		return duplicateErr(err, "create client")
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	var m clientModel
	if err := s.col(colClients).FindOne(ctx, bson.M{"_id": clientID.String()}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrClientNotFound
		}
		return nil, fmt.Errorf("folio/mongo: get client: %w", err)
	}
	return fromClientModel(&m)
}

func (s *Store) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	filter := bson.M{}
	if opts.ActiveOnly {
		filter["is_active"] = true
	}
	if opts.Search != "" {
		re := containsRegex(opts.Search)
		filter["$or"] = bson.A{
			bson.M{"company_name": re},
			bson.M{"contact_person": re},
			bson.M{"email": re},
		}
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}, {Key: "_id", Value: 1}})
	setPage(findOpts, opts.Limit, opts.Offset)

	var models []clientModel
	if err := s.findAll(ctx, colClients, filter, findOpts, &models); err != nil {
		return nil, fmt.Errorf("folio/mongo: list clients: %w", err)
	}
	result := make([]*client.Client, 0, len(models))
	for i := range models {
		c, err := fromClientModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	m := toClientModel(c)
	res, err := s.col(colClients).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("folio/mongo: update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return folio.ErrClientNotFound
	}
	return nil
}

// ==================== Product Store ====================

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	if _, err := s.col(colProducts).InsertOne(ctx, toProductModel(p)); err != nil {
		return duplicateErr(err, "create product")
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error) {
	return s.findProduct(ctx, bson.M{"_id": productID.String()})
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*product.Product, error) {
	if sku == "" {
		return nil, folio.ErrProductNotFound
	}
	return s.findProduct(ctx, bson.M{"sku": sku})
}

func (s *Store) findProduct(ctx context.Context, filter bson.M) (*product.Product, error) {
	var m productModel
	if err := s.col(colProducts).FindOne(ctx, filter).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrProductNotFound
		}
		return nil, fmt.Errorf("folio/mongo: get product: %w", err)
	}
	return fromProductModel(&m)
}

func (s *Store) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	filter := bson.M{}
	if opts.ActiveOnly {
		filter["is_active"] = true
	}
	if opts.Search != "" {
		re := containsRegex(opts.Search)
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"sku": re}}
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}, {Key: "_id", Value: 1}})
	setPage(findOpts, opts.Limit, opts.Offset)

	var models []productModel
	if err := s.findAll(ctx, colProducts, filter, findOpts, &models); err != nil {
		return nil, fmt.Errorf("folio/mongo: list products: %w", err)
	}
	result := make([]*product.Product, 0, len(models))
	for i := range models {
		p, err := fromProductModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	m := toProductModel(p)
	res, err := s.col(colProducts).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return duplicateErr(err, "update product")
	}
	if res.MatchedCount == 0 {
		return folio.ErrProductNotFound
	}
	return nil
}

// ==================== Settings Store ====================

// ensureSettings upserts the defaults document without touching an existing one.
func (s *Store) ensureSettings(ctx context.Context) error {
	defaults, err := settingsDoc(toSettingsModel(settings.Defaults()))
	if err != nil {
		return err
	}
	_, err = s.col(colSettings).UpdateOne(ctx,
		bson.M{"_id": settingsID},
		bson.M{"$setOnInsert": defaults},
		options.UpdateOne().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("folio/mongo: init settings: %w", err)
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	if err := s.ensureSettings(ctx); err != nil {
		return nil, err
	}
	var m settingsModel
	if err := s.col(colSettings).FindOne(ctx, bson.M{"_id": settingsID}).Decode(&m); err != nil {
		return nil, fmt.Errorf("folio/mongo: get settings: %w", err)
	}
	return fromSettingsModel(&m)
}

// UpdateSettings writes every field; $max keeps the counter from moving back.
func (s *Store) UpdateSettings(ctx context.Context, cfg *settings.Settings) error {
	if err := s.ensureSettings(ctx); err != nil {
		return err
	}
	m := toSettingsModel(cfg)
	m.UpdatedAt = time.Now().UTC()

	set, err := settingsDoc(m)
	if err != nil {
		return err
	}
	delete(set, "invoice_next_number")

	_, err = s.col(colSettings).UpdateOne(ctx, bson.M{"_id": settingsID}, bson.M{
		"$set": set,
		"$max": bson.M{"invoice_next_number": m.InvoiceNextNumber},
	})
	if err != nil {
		return fmt.Errorf("folio/mongo: update settings: %w", err)
	}
	return nil
}

func (s *Store) NextInvoiceNumber(ctx context.Context) (string, int64, error) {
	if err := s.ensureSettings(ctx); err != nil {
		return "", 0, err
	}
	var before settingsModel
	err := s.col(colSettings).FindOneAndUpdate(ctx,
		bson.M{"_id": settingsID},
		bson.M{"$inc": bson.M{"invoice_next_number": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		return "", 0, fmt.Errorf("folio/mongo: next invoice number: %w", err)
	}
	return before.InvoicePrefix, before.InvoiceNextNumber, nil
}

func (s *Store) PeekInvoiceNumber(ctx context.Context) (string, int64, error) {
	cfg, err := s.GetSettings(ctx)
	if err != nil {
		return "", 0, err
	}
	return cfg.InvoicePrefix, cfg.InvoiceNextNumber, nil
}

// settingsDoc renders m as an update document without its _id.
func settingsDoc(m *settingsModel) (bson.M, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "_id")
	return doc, nil
}

// ==================== Statement Store ====================

func (s *Store) CreateStatement(ctx context.Context, st *statement.Statement) error {
	if _, err := s.col(colStatements).InsertOne(ctx, toStatementModel(st)); err != nil {
		return duplicateErr(err, "create statement")
	}
	return nil
}

func (s *Store) GetStatement(ctx context.Context, stmtID id.StatementID) (*statement.Statement, error) {
	var m statementModel
	if err := s.col(colStatements).FindOne(ctx, bson.M{"_id": stmtID.String()}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrStatementNotFound
		}
		return nil, fmt.Errorf("folio/mongo: get statement: %w", err)
	}
	st, err := fromStatementModel(&m)
	if err != nil {
		return nil, err
	}
	if st.Lines == nil {
		st.Lines = []statement.Line{}
	}
	return st, nil
}

func (s *Store) ListStatements(ctx context.Context, clientID id.ClientID) ([]*statement.Statement, error) {
	filter := bson.M{}
	if !clientID.IsNil() {
		filter["client_id"] = clientID.String()
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"lines": 0})

	var models []statementModel
	if err := s.findAll(ctx, colStatements, filter, findOpts, &models); err != nil {
		return nil, fmt.Errorf("folio/mongo: list statements: %w", err)
	}
	result := make([]*statement.Statement, 0, len(models))
	for i := range models {
		st, err := fromStatementModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, nil
}

func (s *Store) DeleteStatement(ctx context.Context, stmtID id.StatementID) error {
	res, err := s.col(colStatements).DeleteOne(ctx, bson.M{"_id": stmtID.String()})
	if err != nil {
		return fmt.Errorf("folio/mongo: delete statement: %w", err)
	}
	if res.DeletedCount == 0 {
		return folio.ErrStatementNotFound
	}
	return nil
}

// ==================== Email log Store ====================

func (s *Store) CreateEmailLog(ctx context.Context, e *emaillog.Entry) error {
	if _, err := s.col(colEmailLogs).InsertOne(ctx, toEmailLogModel(e)); err != nil {
		return duplicateErr(err, "create email log")
	}
	return nil
}

func (s *Store) ListEmailLogs(ctx context.Context, opts emaillog.ListOpts) ([]*emaillog.Entry, error) {
	filter := bson.M{}
	if !opts.InvoiceID.IsNil() {
		filter["invoice_id"] = opts.InvoiceID.String()
	}
	if !opts.StatementID.IsNil() {
		filter["statement_id"] = opts.StatementID.String()
	}
	if opts.FailedOnly {
		filter["success"] = false
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}, {Key: "_id", Value: -1}})
	setPage(findOpts, opts.Limit, opts.Offset)

	var models []emailLogModel
	if err := s.findAll(ctx, colEmailLogs, filter, findOpts, &models); err != nil {
		return nil, fmt.Errorf("folio/mongo: list email logs: %w", err)
	}
	result := make([]*emaillog.Entry, 0, len(models))
	for i := range models {
		e, err := fromEmailLogModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

// ==================== Helpers ====================

func (s *Store) findAll(ctx context.Context, col string, filter bson.M, opts *options.FindOptionsBuilder, out any) error {
	cur, err := s.col(col).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func setPage(opts *options.FindOptionsBuilder, limit, offset int) {
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
}

// containsRegex matches q anywhere in the field, ignoring case.
func containsRegex(q string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// duplicateErr maps duplicate-key errors on the named unique indexes to
// folio sentinels.
func duplicateErr(err error, op string) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("folio/mongo: %s: %w", op, err)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, idxInvoiceNumber):
		return folio.ErrDuplicateInvoiceNumber
	case strings.Contains(msg, idxProductSKU):
		return folio.ErrDuplicateSKU
	}
	return folio.ErrAlreadyExists
}

// migrationIndexes returns the index definitions for all folio collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colInvoices: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(idxInvoiceNumber),
			},
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "invoice_date", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
		},
		colClients: {
			{Keys: bson.D{{Key: "name_key", Value: 1}}},
		},
		colProducts: {
			{
				Keys: bson.D{{Key: "sku", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(idxProductSKU).
					SetPartialFilterExpression(bson.M{"sku": bson.M{"$gt": ""}}),
			},
			{Keys: bson.D{{Key: "name_key", Value: 1}}},
		},
		colStatements: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colEmailLogs: {
			{Keys: bson.D{{Key: "invoice_id", Value: 1}, {Key: "sent_at", Value: -1}}},
			{Keys: bson.D{{Key: "statement_id", Value: 1}, {Key: "sent_at", Value: -1}}},
		},
	}
}
