package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/vocalagent/vocalagent/store"
)

func (d *DB) CreateExecutionLog(ctx context.Context, create *store.ExecutionLogEntry) (*store.ExecutionLogEntry, error) {
	payload := []byte("{}")
	if len(create.Payload) > 0 {
		var err error
		payload, err = json.Marshal(create.Payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal payload")
		}
	}

	query := `
		INSERT INTO execution_log (actor, action, phase, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_ts
	`
	err := d.db.QueryRowContext(ctx, query, create.Actor, create.Action, create.Phase, payload).
		Scan(&create.ID, &create.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create execution log")
	}
	return create, nil
}

func (d *DB) ListExecutionLogs(ctx context.Context, find *store.FindExecutionLog) ([]*store.ExecutionLogEntry, error) {
	where, args := []string{"TRUE"}, []any{}
	if find.Actor != nil {
		args = append(args, *find.Actor)
		where = append(where, fmt.Sprintf("actor = $%d", len(args)))
	}
	if find.Action != nil {
		args = append(args, *find.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}

	query := `
		SELECT id, actor, action, phase, payload, created_ts
		FROM execution_log
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC
	`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list execution logs")
	}
	defer rows.Close()

	list := []*store.ExecutionLogEntry{}
	for rows.Next() {
		entry := &store.ExecutionLogEntry{}
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Phase, &payload, &entry.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan execution log")
		}
		if err := json.Unmarshal(payload, &entry.Payload); err != nil {
			entry.Payload = map[string]any{}
		}
		list = append(list, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate execution logs")
	}
	return list, nil
}
