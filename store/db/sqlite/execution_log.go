package sqlite

import (
	"context"
	"encoding/json"
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
		VALUES (?, ?, ?, ?)
		RETURNING id, created_ts
	`
	err := d.db.QueryRowContext(ctx, query, create.Actor, create.Action, create.Phase, string(payload)).
		Scan(&create.ID, &create.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create execution log")
	}
	return create, nil
}

func (d *DB) ListExecutionLogs(ctx context.Context, find *store.FindExecutionLog) ([]*store.ExecutionLogEntry, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.Actor != nil {
		where, args = append(where, "actor = ?"), append(args, *find.Actor)
	}
	if find.Action != nil {
		where, args = append(where, "action = ?"), append(args, *find.Action)
	}

	query := `
		SELECT id, actor, action, phase, payload, created_ts
		FROM execution_log
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list execution logs")
	}
	defer rows.Close()

	list := []*store.ExecutionLogEntry{}
	for rows.Next() {
		entry := &store.ExecutionLogEntry{}
		var payload string
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Phase, &payload, &entry.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan execution log")
		}
		if err := json.Unmarshal([]byte(payload), &entry.Payload); err != nil {
			entry.Payload = map[string]any{}
		}
		list = append(list, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate execution logs")
	}
	return list, nil
}
