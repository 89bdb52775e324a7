package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/enrollment"
)

// The enrollment window is a single row keyed by id=1. A missing row means
// the window was never configured and reads as closed.
func (s *Store) GetWindow(ctx context.Context) (enrollment.Window, error) {
	var w enrollment.Window
	var limite sql.NullString
	err := s.db.QueryRowContext(ctx, `
		select aberto, data_limite from inscricao_periodo where id = 1
	`).Scan(&w.Aberto, &limite)
	if errors.Is(err, sql.ErrNoRows) {
		return enrollment.Closed(), nil
	}
	if err != nil {
		return enrollment.Closed(), err
	}
	if limite.Valid && limite.String != "" {
		w.DataLimite = &limite.String
	}
	return w, nil
}

func (s *Store) SetWindow(ctx context.Context, w enrollment.Window) error {
	var limite any
	if w.DataLimite != nil {
		limite = *w.DataLimite
	}
	_, err := s.db.ExecContext(ctx, `
		insert into inscricao_periodo(id, aberto, data_limite, atualizado_em)
		values (1, $1, $2, now())
		on conflict (id) do update
		set aberto = excluded.aberto, data_limite = excluded.data_limite, atualizado_em = now()
	`, w.Aberto, limite)
	return err
}
