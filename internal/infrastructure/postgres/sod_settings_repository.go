package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.SODSettingsRepository = (*SODSettingsRepo)(nil)

// SODSettingsRepo configuración de segregación de funciones sobre PostgreSQL.
type SODSettingsRepo struct {
	q Querier
}

// NewSODSettingsRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSODSettingsRepository(q Querier) *SODSettingsRepo {
	return &SODSettingsRepo{q: q}
}

const sodColumns = `business_id, allow_creator_check, allow_creator_send, allow_checker_send, allow_sender_receive, allow_creator_receive, allow_receiver_complete, allow_receiver_approve, allow_requester_approve, exempt_roles, updated_at, updated_by`

// Get devuelve nil (sin error) si la empresa aún no tiene configuración: el
// caso de uso construye entonces el default estricto en código.
func (r *SODSettingsRepo) Get(businessID string) (*entity.SODSettings, error) {
	query := `SELECT ` + sodColumns + ` FROM sod_settings WHERE business_id = $1`
	var s entity.SODSettings
	var updatedBy *string
	err := r.q.QueryRow(context.Background(), query, businessID).Scan(
		&s.BusinessID, &s.AllowCreatorCheck, &s.AllowCreatorSend, &s.AllowCheckerSend,
		&s.AllowSenderReceive, &s.AllowCreatorReceive, &s.AllowReceiverComplete,
		&s.AllowReceiverApprove, &s.AllowRequesterApprove, &s.ExemptRoles,
		&s.UpdatedAt, &updatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sod settings: %w", err)
	}
	s.UpdatedBy = deref(updatedBy)
	return &s, nil
}

// Upsert inserta o actualiza la configuración de la empresa.
func (r *SODSettingsRepo) Upsert(s *entity.SODSettings) error {
	query := `
		INSERT INTO sod_settings (` + sodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), $11)
		ON CONFLICT (business_id) DO UPDATE SET
			allow_creator_check = EXCLUDED.allow_creator_check,
			allow_creator_send = EXCLUDED.allow_creator_send,
			allow_checker_send = EXCLUDED.allow_checker_send,
			allow_sender_receive = EXCLUDED.allow_sender_receive,
			allow_creator_receive = EXCLUDED.allow_creator_receive,
			allow_receiver_complete = EXCLUDED.allow_receiver_complete,
			allow_receiver_approve = EXCLUDED.allow_receiver_approve,
			allow_requester_approve = EXCLUDED.allow_requester_approve,
			exempt_roles = EXCLUDED.exempt_roles,
			updated_at = now(),
			updated_by = EXCLUDED.updated_by`
	_, err := r.q.Exec(context.Background(), query,
		s.BusinessID, s.AllowCreatorCheck, s.AllowCreatorSend, s.AllowCheckerSend,
		s.AllowSenderReceive, s.AllowCreatorReceive, s.AllowReceiverComplete,
		s.AllowReceiverApprove, s.AllowRequesterApprove, s.ExemptRoles,
		nullable(s.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("upsert sod settings: %w", err)
	}
	return nil
}
