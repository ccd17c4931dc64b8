package pgclientrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/go-token-service/clients"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/oauth2"
)

var _ clients.Repo = (*PostgresClientRepo)(nil)

// Schema creates the app client registry table.
const Schema = `
CREATE TABLE IF NOT EXISTS app_clients (
	id             TEXT PRIMARY KEY,
	user_pool_id   TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	secret         TEXT NOT NULL DEFAULT '',
	scopes         TEXT[] NOT NULL DEFAULT '{}',
	allowed_grants TEXT[] NOT NULL DEFAULT '{}'
)`

const (
	upsertClientSQL = `
INSERT INTO app_clients (id, user_pool_id, name, secret, scopes, allowed_grants)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
	user_pool_id = EXCLUDED.user_pool_id,
	name = EXCLUDED.name,
	secret = EXCLUDED.secret,
	scopes = EXCLUDED.scopes,
	allowed_grants = EXCLUDED.allowed_grants`

	deleteClientSQL = `DELETE FROM app_clients WHERE id = $1`

	getClientSQL = `
SELECT id, user_pool_id, name, secret, scopes, allowed_grants
FROM app_clients WHERE id = $1`

	listClientsSQL = `
SELECT id, user_pool_id, name, secret, scopes, allowed_grants
FROM app_clients ORDER BY id OFFSET $1 LIMIT $2`
)

// DBQuerier is satisfied by both *pgxpool.Pool and pgx.Tx
type DBQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresClientRepo is a PostgreSQL implementation of clients.Repo
type PostgresClientRepo struct {
	db DBQuerier
}

func NewPostgresClientRepo(db DBQuerier) *PostgresClientRepo {
	return &PostgresClientRepo{db: db}
}

// EnsureSchema creates the backing table if it does not exist
func (r *PostgresClientRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("[PostgresClientRepo.EnsureSchema] %w", err)
	}
	return nil
}

func (r *PostgresClientRepo) Upsert(ctx context.Context, client *clients.Client) error {
	m := toClientModel(client)
	if _, err := r.db.Exec(ctx, upsertClientSQL, m.ID, m.UserPoolID, m.Name, m.Secret, m.Scopes, m.AllowedGrants); err != nil {
		return fmt.Errorf("[PostgresClientRepo.Upsert] %w", err)
	}
	return nil
}

func (r *PostgresClientRepo) Delete(ctx context.Context, clientID string) error {
	if _, err := r.db.Exec(ctx, deleteClientSQL, clientID); err != nil {
		return fmt.Errorf("[PostgresClientRepo.Delete] %w", err)
	}
	return nil
}

func (r *PostgresClientRepo) Get(ctx context.Context, clientID string) (*clients.Client, error) {
	rows, err := r.db.Query(ctx, getClientSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("[PostgresClientRepo.Get] %w", err)
	}

	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[clientModel])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %q: %w", clientID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[PostgresClientRepo.Get] %w", err)
	}
	return m.toDomain(), nil
}

func (r *PostgresClientRepo) List(ctx context.Context, offset, limit int) ([]*clients.Client, error) {
	var pgLimit any // NULL means no limit
	if limit > 0 {
		pgLimit = limit
	}

	rows, err := r.db.Query(ctx, listClientsSQL, max(offset, 0), pgLimit)
	if err != nil {
		return nil, fmt.Errorf("[PostgresClientRepo.List] %w", err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[clientModel])
	if err != nil {
		return nil, fmt.Errorf("[PostgresClientRepo.List] %w", err)
	}

	list := make([]*clients.Client, 0, len(models))
	for _, m := range models {
		list = append(list, m.toDomain())
	}
	return list, nil
}

// ----- MODELS ----- //

// clientModel is the app_clients row
type clientModel struct {
	ID            string   `db:"id"`
	UserPoolID    string   `db:"user_pool_id"`
	Name          string   `db:"name"`
	Secret        string   `db:"secret"`
	Scopes        []string `db:"scopes"`
	AllowedGrants []string `db:"allowed_grants"`
}

// ----- MAPPERS ----- //

func toClientModel(c *clients.Client) clientModel {
	grants := make([]string, 0, len(c.AllowedGrants))
	for _, g := range c.AllowedGrants {
		grants = append(grants, string(g))
	}
	scopes := c.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return clientModel{
		ID:            c.ID,
		UserPoolID:    c.UserPoolID,
		Name:          c.Name,
		Secret:        c.Secret,
		Scopes:        scopes,
		AllowedGrants: grants,
	}
}

func (m clientModel) toDomain() *clients.Client {
	var grants []oauth2.GrantType
	for _, g := range m.AllowedGrants {
		grants = append(grants, oauth2.GrantType(g))
	}
	return &clients.Client{
		ID:            m.ID,
		UserPoolID:    m.UserPoolID,
		Name:          m.Name,
		Secret:        m.Secret,
		Scopes:        m.Scopes,
		AllowedGrants: grants,
	}
}
