package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// Entity batches are limited to 100 operations within one partition.
const batchSize = 100

// TableStore connects to Azure Table Storage, the hosted document store for
// transactions.
type TableStore struct {
	serviceClient *aztables.ServiceClient
}

// NewTableStore creates a TableStore for the table endpoint at serviceURL.
func NewTableStore(serviceURL string) (*TableStore, error) {
	auth, err := resolveAuth("table", serviceURL)
	if err != nil {
		return nil, err
	}

	var client *aztables.ServiceClient
	if auth.sharedKey() {
		cred, err := aztables.NewSharedKeyCredential(auth.accountName, auth.accountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		client, err = aztables.NewServiceClient(serviceURL, auth.token, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	slog.Info("table store initialized", "table_url", serviceURL)
	return &TableStore{serviceClient: client}, nil
}

// CreateTables ensures the named tables exist.
func (s *TableStore) CreateTables(ctx context.Context, tables ...string) error {
	for _, tableName := range tables {
		_, err := s.serviceClient.CreateTable(ctx, tableName, nil)
		if err != nil {
			var azErr *azcore.ResponseError
			if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}
	return nil
}

// Source returns the transaction collection stored in tableName.
func (s *TableStore) Source(tableName string) *TransactionTable {
	return &TransactionTable{
		client: s.serviceClient.NewClient(tableName),
		table:  tableName,
		now:    time.Now,
	}
}

// entityClient is the part of *aztables.Client used by TransactionTable.
type entityClient interface {
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	UpdateEntity(ctx context.Context, entity []byte, options *aztables.UpdateEntityOptions) (aztables.UpdateEntityResponse, error)
	DeleteEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error)
	SubmitTransaction(ctx context.Context, actions []aztables.TransactionAction, options *aztables.SubmitTransactionOptions) (aztables.TransactionResponse, error)
	NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

// TransactionTable is one transaction collection. Entities are partitioned
// by user id and keyed by transaction id.
type TransactionTable struct {
	client entityClient
	table  string
	now    func() time.Time
}

func (t *TransactionTable) newTransaction(in models.TransactionInput) models.Transaction {
	return models.Transaction{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        models.CalendarDate(in.Date),
		CreatedAt:   t.now().UTC(),
	}
}

func (t *TransactionTable) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return models.Transaction{}, err
	}

	tx := t.newTransaction(in)
	entity, err := encodeEntity(tx)
	if err != nil {
		return models.Transaction{}, err
	}
	if _, err := t.client.AddEntity(ctx, entity, nil); err != nil {
		slog.Error("failed to add entity", "table", t.table, "user_id", tx.UserID, "error", err)
		return models.Transaction{}, fmt.Errorf("failed to add transaction: %w", err)
	}
	return tx, nil
}

// CreateMany inserts inputs in entity-group batches of up to batchSize rows
// per user. Every input is validated before anything is written, but only
// each batch commits atomically: when a later batch fails, earlier ones stay.
func (t *TransactionTable) CreateMany(ctx context.Context, inputs []models.TransactionInput) ([]models.Transaction, error) {
	partitions := make(map[string][]aztables.TransactionAction)
	created := make([]models.Transaction, 0, len(inputs))

	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		tx := t.newTransaction(in)
		entity, err := encodeEntity(tx)
		if err != nil {
			return nil, err
		}
		partitions[tx.UserID] = append(partitions[tx.UserID], aztables.TransactionAction{
			ActionType: aztables.TransactionTypeAdd,
			Entity:     entity,
		})
		created = append(created, tx)
	}

	written := 0
	for pk, batch := range partitions {
		for i := 0; i < len(batch); i += batchSize {
			end := min(i+batchSize, len(batch))
			if _, err := t.client.SubmitTransaction(ctx, batch[i:end], nil); err != nil {
				slog.Error("transaction batch failed", "table", t.table, "partition", pk, "written", written, "error", err)
				return nil, fmt.Errorf("failed to submit transaction batch %d-%d for %s after %d written: %w", i, end, pk, written, err)
			}
			written += end - i
		}
	}

	slog.Info("saved transactions", "table", t.table, "count", len(created), "partitions", len(partitions))
	return created, nil
}

func (t *TransactionTable) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return t.GetByDateRange(ctx, userID, models.DateRange{})
}

func (t *TransactionTable) GetByDateRange(ctx context.Context, userID string, r models.DateRange) ([]models.Transaction, error) {
	if userID == "" {
		return []models.Transaction{}, nil
	}

	out, err := t.query(ctx, rangeFilter(userID, r))
	if err != nil {
		return nil, err
	}
	// Table Storage orders by keys only.
	slices.SortFunc(out, models.NewerFirst)
	return out, nil
}

func (t *TransactionTable) Update(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	if err := patch.Validate(id); err != nil {
		return models.Transaction{}, err
	}

	current, err := t.find(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}

	updated := patch.Apply(current)
	updated.Date = models.CalendarDate(updated.Date)
	entity, err := encodeEntity(updated)
	if err != nil {
		return models.Transaction{}, err
	}

	if updated.UserID == current.UserID {
		_, err = t.client.UpdateEntity(ctx, entity, &aztables.UpdateEntityOptions{UpdateMode: aztables.UpdateModeReplace})
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to update transaction %s: %w", id, err)
		}
		return updated, nil
	}

	// The partition key is the user id, so moving users means re-inserting.
	if _, err := t.client.AddEntity(ctx, entity, nil); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to move transaction %s: %w", id, err)
	}
	if _, err := t.client.DeleteEntity(ctx, current.UserID, id, nil); err != nil {
		if _, undoErr := t.client.DeleteEntity(ctx, updated.UserID, id, nil); undoErr != nil {
			slog.Error("failed to undo transaction move", "table", t.table, "id", id, "user_id", updated.UserID, "error", undoErr)
			err = errors.Join(err, undoErr)
		}
		return models.Transaction{}, fmt.Errorf("failed to remove moved transaction %s: %w", id, err)
	}
	return updated, nil
}

func (t *TransactionTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return models.ErrMissingID
	}

	current, err := t.find(ctx, id)
	if err != nil {
		return err
	}
	if _, err := t.client.DeleteEntity(ctx, current.UserID, id, nil); err != nil {
		if isNotFound(err) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return nil
}

// find locates a transaction by id across partitions.
func (t *TransactionTable) find(ctx context.Context, id string) (models.Transaction, error) {
	found, err := t.query(ctx, "RowKey eq "+quote(id))
	if err != nil {
		return models.Transaction{}, err
	}
	if len(found) == 0 {
		return models.Transaction{}, models.ErrNotFound
	}
	return found[0], nil
}

func (t *TransactionTable) query(ctx context.Context, filter string) ([]models.Transaction, error) {
	pager := t.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
	})

	out := []models.Transaction{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities: %w", err)
		}
		for _, entity := range resp.Entities {
			tx, err := decodeEntity(entity)
			if err != nil {
				slog.Warn("skipping unreadable entity", "table", t.table, "error", err)
				continue
			}
			out = append(out, tx)
		}
	}
	return out, nil
}

func isNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.ErrorCode == "ResourceNotFound"
}

// quote renders s as an OData string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// rangeFilter builds the OData filter for one user's transactions. Dates are
// stored as ISO strings, so lexical comparison matches calendar order.
func rangeFilter(userID string, r models.DateRange) string {
	clauses := []string{"PartitionKey eq " + quote(userID)}
	if !r.Start.IsZero() {
		clauses = append(clauses, "Date ge "+quote(r.Start.Format(models.DateLayout)))
	}
	if !r.End.IsZero() {
		clauses = append(clauses, "Date le "+quote(r.End.Format(models.DateLayout)))
	}
	return strings.Join(clauses, " and ")
}

func encodeEntity(t models.Transaction) ([]byte, error) {
	entity := map[string]any{
		"PartitionKey": t.UserID,
		"RowKey":       t.ID,
		"Amount":       t.Amount.String(),
		"Category":     t.Category,
		"Description":  t.Description,
		"Date":         t.DateString(),
		"CreatedAt":    t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

func decodeEntity(data []byte) (models.Transaction, error) {
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	getString := func(key string) string {
		if v, ok := parsed[key].(string); ok {
			return v
		}
		return ""
	}

	tx := models.Transaction{
		ID:          getString("RowKey"),
		UserID:      getString("PartitionKey"),
		Category:    getString("Category"),
		Description: getString("Description"),
	}

	// Older rows may hold the amount as a double.
	switch v := parsed["Amount"].(type) {
	case string:
		amount, err := decimal.NewFromString(v)
		if err != nil {
			return tx, fmt.Errorf("invalid Amount %q: %w", v, err)
		}
		tx.Amount = amount
	case float64:
		tx.Amount = decimal.NewFromFloat(v)
	default:
		return tx, fmt.Errorf("missing Amount")
	}

	date, err := models.ParseDate(getString("Date"))
	if err != nil {
		return tx, fmt.Errorf("invalid Date: %w", err)
	}
	tx.Date = date

	if created := getString("CreatedAt"); created != "" {
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return tx, fmt.Errorf("invalid CreatedAt: %w", err)
		}
	}
	return tx, nil
}
