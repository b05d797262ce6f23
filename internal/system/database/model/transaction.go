/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package model

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// TxInterface defines the interface for transaction operations.
type TxInterface interface {
	Exec(query DBQuery, args ...interface{}) (sql.Result, error)
	Query(query DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Commit() error
	Rollback() error
}

// Tx wraps sqlx.Tx to implement TxInterface for a specific database type.
type Tx struct {
	tx     *sqlx.Tx
	ctx    context.Context
	dbType string
}

// NewTx creates a new Tx instance.
func NewTx(ctx context.Context, tx *sqlx.Tx, dbType string) TxInterface {
	return &Tx{tx: tx, ctx: ctx, dbType: dbType}
}

// Exec runs a write statement inside the transaction.
func (t *Tx) Exec(query DBQuery, args ...interface{}) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, t.tx.Rebind(query.GetQuery(t.dbType)), args...)
}

// Query runs a read statement inside the transaction.
func (t *Tx) Query(query DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := t.tx.QueryxContext(t.ctx, t.tx.Rebind(query.GetQuery(t.dbType)), args...)
	if err != nil {
		return nil, err
	}
	return ScanRows(rows)
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
