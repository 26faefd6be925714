package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vigil/internal/sanctions"
)

// Postgres persists sanctioned entities in PostgreSQL. Upserts are keyed on
// the (source_list_id, external_id) unique constraint so re-ingestion is
// idempotent and lists never contend on each other's rows.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed entity store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Upsert writes an entity and its child rows in one transaction. Child rows
// are replaced wholesale; they have no identity of their own.
func (p *Postgres) Upsert(ctx context.Context, e *sanctions.SanctionedEntity) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	var entityID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sanctioned_entities (id, external_id, source_list_id, subject_type, country_codes, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_list_id, external_id) DO UPDATE SET
			subject_type   = EXCLUDED.subject_type,
			country_codes  = EXCLUDED.country_codes,
			last_synced_at = EXCLUDED.last_synced_at
		RETURNING id
	`, e.ID, e.ExternalID, e.SourceListID, string(e.SubjectType), pq.Array(e.CountryCodes), e.LastSyncedAt).Scan(&entityID)
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	e.ID = entityID

	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_aliases WHERE entity_id = $1`, entityID); err != nil {
		return fmt.Errorf("clear aliases: %w", err)
	}
	for i, a := range e.Aliases {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entity_aliases (entity_id, whole_name, first_name, last_name, language, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, entityID, a.WholeName, a.FirstName, a.LastName, a.Language, i)
		if err != nil {
			return fmt.Errorf("insert alias: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_birth_records WHERE entity_id = $1`, entityID); err != nil {
		return fmt.Errorf("clear birth records: %w", err)
	}
	for _, b := range e.BirthRecords {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entity_birth_records (entity_id, birth_date, country_code, place)
			VALUES ($1, $2, $3, $4)
		`, entityID, b.Date, b.CountryCode, b.Place)
		if err != nil {
			return fmt.Errorf("insert birth record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// DeleteAbsent removes entities of a list not present in keepExternalIDs.
// Called by the orchestrator only after a fully successful re-sync, so absence
// really means the regulator delisted the entity.
func (p *Postgres) DeleteAbsent(ctx context.Context, sourceListID string, keepExternalIDs []string) (int, error) {
	res, err := p.db.ExecContext(ctx, `
		DELETE FROM sanctioned_entities
		WHERE source_list_id = $1
		  AND NOT (external_id = ANY($2))
	`, sourceListID, pq.Array(keepExternalIDs))
	if err != nil {
		return 0, fmt.Errorf("delete absent entities: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count removed entities: %w", err)
	}
	return int(removed), nil
}

// Aliases streams every persisted alias with its owning entity id.
func (p *Postgres) Aliases(ctx context.Context) ([]sanctions.AliasRef, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT entity_id, whole_name
		FROM entity_aliases
		ORDER BY entity_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("scan aliases: %w", err)
	}
	defer rows.Close()

	var refs []sanctions.AliasRef
	for rows.Next() {
		var ref sanctions.AliasRef
		if err := rows.Scan(&ref.EntityID, &ref.WholeName); err != nil {
			return nil, fmt.Errorf("scan alias row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}
	return refs, nil
}

// FindByIDs loads full entities (with aliases and birth records) for the
// given internal ids.
func (p *Postgres) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*sanctions.SanctionedEntity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, external_id, source_list_id, subject_type, country_codes, last_synced_at
		FROM sanctioned_entities
		WHERE id = ANY($1)
		ORDER BY id
	`, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*sanctions.SanctionedEntity, len(ids))
	var entities []*sanctions.SanctionedEntity
	for rows.Next() {
		var (
			e           sanctions.SanctionedEntity
			subjectType string
		)
		if err := rows.Scan(&e.ID, &e.ExternalID, &e.SourceListID, &subjectType, pq.Array(&e.CountryCodes), &e.LastSyncedAt); err != nil {
			return nil, fmt.Errorf("scan entity row: %w", err)
		}
		e.SubjectType = sanctions.SubjectType(subjectType)
		byID[e.ID] = &e
		entities = append(entities, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	if len(entities) == 0 {
		return nil, nil
	}

	if err := p.loadAliases(ctx, idStrings, byID); err != nil {
		return nil, err
	}
	if err := p.loadBirthRecords(ctx, idStrings, byID); err != nil {
		return nil, err
	}
	return entities, nil
}

func (p *Postgres) loadAliases(ctx context.Context, idStrings []string, byID map[uuid.UUID]*sanctions.SanctionedEntity) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT entity_id, whole_name, first_name, last_name, language
		FROM entity_aliases
		WHERE entity_id = ANY($1)
		ORDER BY entity_id, position
	`, pq.Array(idStrings))
	if err != nil {
		return fmt.Errorf("load aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entityID uuid.UUID
			a        sanctions.NameAlias
		)
		if err := rows.Scan(&entityID, &a.WholeName, &a.FirstName, &a.LastName, &a.Language); err != nil {
			return fmt.Errorf("scan alias row: %w", err)
		}
		if e, ok := byID[entityID]; ok {
			e.Aliases = append(e.Aliases, a)
		}
	}
	return rows.Err()
}

func (p *Postgres) loadBirthRecords(ctx context.Context, idStrings []string, byID map[uuid.UUID]*sanctions.SanctionedEntity) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT entity_id, birth_date, country_code, place
		FROM entity_birth_records
		WHERE entity_id = ANY($1)
		ORDER BY entity_id, id
	`, pq.Array(idStrings))
	if err != nil {
		return fmt.Errorf("load birth records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entityID uuid.UUID
			b        sanctions.BirthRecord
		)
		if err := rows.Scan(&entityID, &b.Date, &b.CountryCode, &b.Place); err != nil {
			return fmt.Errorf("scan birth record row: %w", err)
		}
		if e, ok := byID[entityID]; ok {
			e.BirthRecords = append(e.BirthRecords, b)
		}
	}
	return rows.Err()
}

// CountByList returns the number of entities persisted for a list.
func (p *Postgres) CountByList(ctx context.Context, sourceListID string) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sanctioned_entities WHERE source_list_id = $1
	`, sourceListID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	return count, nil
}
