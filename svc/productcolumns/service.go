// Package productcolumns manages the per-tenant custom column definitions
// sellers attach to their subscribed products. All reads and writes run
// against the tenant's own database through the shared executor.
package productcolumns

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenantdb"
)

// Column is one custom column definition in tbl_amz_sub_product_columns.
type Column struct {
	ID         int        `json:"id"`
	SubID      uuid.UUID  `json:"subId"`
	ColumnName string     `json:"columnName"`
	ProfileID  uuid.UUID  `json:"profileId"`
	IsActive   bool       `json:"isActive"`
	CreatedBy  uuid.UUID  `json:"createdBy"`
	CreatedOn  time.Time  `json:"createdOn"`
	UpdatedBy  *uuid.UUID `json:"updatedBy,omitempty"`
	UpdatedOn  *time.Time `json:"updatedOn,omitempty"`
}

// UpsertInput is the payload for creating or reactivating a column.
type UpsertInput struct {
	SubID      uuid.UUID `json:"subId"`
	ColumnName string    `json:"columnName"`
	ProfileID  uuid.UUID `json:"profileId"`
	CreatedBy  uuid.UUID `json:"createdBy"`
}

// UpdateInput is the payload for renaming or re-pointing a column.
type UpdateInput struct {
	ID         int       `json:"id"`
	SubID      uuid.UUID `json:"subId"`
	ColumnName string    `json:"columnName"`
	ProfileID  uuid.UUID `json:"profileId"`
	UpdatedBy  uuid.UUID `json:"updatedBy"`
}

// Service runs column operations on the caller's tenant database.
type Service struct {
	exec *tenantdb.Executor
}

// NewService creates the column service.
func NewService(exec *tenantdb.Executor) *Service {
	return &Service{exec: exec}
}

const upsertQuery = `
	INSERT INTO tbl_amz_sub_product_columns
		(id, sub_id, column_name, profile_id, is_active, created_by, created_on)
	VALUES
		((SELECT COALESCE(MAX(id), 0) + 1 FROM tbl_amz_sub_product_columns),
		 $1, $2, $3, true, $4, NOW())
	ON CONFLICT (sub_id, column_name, profile_id)
	DO UPDATE SET
		is_active = true,
		updated_by = $4,
		updated_on = NOW()
	RETURNING id`

// Upsert inserts a column or reactivates an existing one with the same
// (sub_id, column_name, profile_id) key. Returns the column id.
func (s *Service) Upsert(ctx context.Context, orgID string, in UpsertInput) tenantdb.Outcome[int] {
	return tenantdb.Execute(ctx, s.exec, orgID, "upsert_sub_product_column", func(ctx context.Context, conn tenantdb.Conn) (int, error) {
		var id int
		err := conn.QueryRow(ctx, upsertQuery, in.SubID, in.ColumnName, in.ProfileID, in.CreatedBy).Scan(&id)
		return id, err
	})
}

const updateQuery = `
	UPDATE tbl_amz_sub_product_columns
	SET sub_id = $2,
	    column_name = $3,
	    profile_id = $4,
	    updated_by = $5,
	    updated_on = NOW()
	WHERE id = $1 AND is_active = true`

// Update modifies an active column. The payload reports false when no active
// column matched the id.
func (s *Service) Update(ctx context.Context, orgID string, in UpdateInput) tenantdb.Outcome[bool] {
	return s.exec.ExecuteRowsAffected(ctx, orgID, "update_sub_product_column", func(ctx context.Context, conn tenantdb.Conn) (int64, error) {
		tag, err := conn.Exec(ctx, updateQuery, in.ID, in.SubID, in.ColumnName, in.ProfileID, in.UpdatedBy)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	})
}

const deleteQuery = `
	UPDATE tbl_amz_sub_product_columns
	SET is_active = false,
	    updated_by = $2,
	    updated_on = NOW()
	WHERE id = $1`

// Delete soft-deletes a column. The payload reports false when the id did not
// match any column.
func (s *Service) Delete(ctx context.Context, orgID string, id int, updatedBy uuid.UUID) tenantdb.Outcome[bool] {
	return s.exec.ExecuteRowsAffected(ctx, orgID, "delete_sub_product_column", func(ctx context.Context, conn tenantdb.Conn) (int64, error) {
		tag, err := conn.Exec(ctx, deleteQuery, id, updatedBy)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	})
}

const selectColumns = `
	SELECT id, sub_id, column_name, profile_id, is_active,
	       created_by, created_on, updated_by, updated_on
	FROM tbl_amz_sub_product_columns`

// ListBySubID returns the active columns for a subscription.
func (s *Service) ListBySubID(ctx context.Context, orgID string, subID uuid.UUID) tenantdb.Outcome[[]Column] {
	return s.list(ctx, orgID, "list_sub_product_columns_by_sub", selectColumns+" WHERE sub_id = $1 AND is_active = true ORDER BY id", subID)
}

// ListByProfileID returns the active columns for a profile.
func (s *Service) ListByProfileID(ctx context.Context, orgID string, profileID uuid.UUID) tenantdb.Outcome[[]Column] {
	return s.list(ctx, orgID, "list_sub_product_columns_by_profile", selectColumns+" WHERE profile_id = $1 AND is_active = true ORDER BY id", profileID)
}

func (s *Service) list(ctx context.Context, orgID, operation, query string, arg any) tenantdb.Outcome[[]Column] {
	return tenantdb.Execute(ctx, s.exec, orgID, operation, func(ctx context.Context, conn tenantdb.Conn) ([]Column, error) {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var columns []Column
		for rows.Next() {
			var c Column
			if err := rows.Scan(&c.ID, &c.SubID, &c.ColumnName, &c.ProfileID, &c.IsActive,
				&c.CreatedBy, &c.CreatedOn, &c.UpdatedBy, &c.UpdatedOn); err != nil {
				return nil, err
			}
			columns = append(columns, c)
		}
		return columns, rows.Err()
	})
}

// ReplaceForProfile atomically replaces a profile's column set: existing
// columns are soft-deleted and the new set is upserted in one transaction, so
// readers never observe a half-replaced set.
func (s *Service) ReplaceForProfile(ctx context.Context, orgID string, profileID uuid.UUID, updatedBy uuid.UUID, columns []UpsertInput) tenantdb.Outcome[int] {
	return tenantdb.ExecuteTx(ctx, s.exec, orgID, "replace_profile_columns", func(ctx context.Context, tx tenantdb.Tx) (int, error) {
		_, err := tx.Exec(ctx, `
			UPDATE tbl_amz_sub_product_columns
			SET is_active = false, updated_by = $2, updated_on = NOW()
			WHERE profile_id = $1 AND is_active = true`, profileID, updatedBy)
		if err != nil {
			return 0, err
		}

		for _, in := range columns {
			var id int
			if err := tx.QueryRow(ctx, upsertQuery, in.SubID, in.ColumnName, profileID, in.CreatedBy).Scan(&id); err != nil {
				return 0, err
			}
		}
		return len(columns), nil
	})
}
