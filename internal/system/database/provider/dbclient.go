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

package provider

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wso2/informed-consent-api/internal/system/database/model"
)

// DBClientInterface is the query surface stores depend on.
type DBClientInterface interface {
	Query(ctx context.Context, query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Execute(ctx context.Context, query model.DBQuery, args ...interface{}) (int64, error)
	BeginTx(ctx context.Context) (model.TxInterface, error)
	GetDBType() string
}

// DBClient executes dialect aware queries on a sqlx connection pool.
type DBClient struct {
	db     *sqlx.DB
	dbType string
}

var _ DBClientInterface = (*DBClient)(nil)

// NewDBClient creates a new DBClient for the given database type.
func NewDBClient(db *sqlx.DB, dbType string) DBClientInterface {
	return &DBClient{db: db, dbType: dbType}
}

// Query runs a read query and returns all rows.
func (c *DBClient) Query(ctx context.Context, query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := c.db.QueryxContext(ctx, c.db.Rebind(query.GetQuery(c.dbType)), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.GetID(), err)
	}
	results, err := model.ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.GetID(), err)
	}
	return results, nil
}

// Execute runs a write statement outside of a transaction and returns the affected row count.
func (c *DBClient) Execute(ctx context.Context, query model.DBQuery, args ...interface{}) (int64, error) {
	res, err := c.db.ExecContext(ctx, c.db.Rebind(query.GetQuery(c.dbType)), args...)
	if err != nil {
		return 0, fmt.Errorf("execute %s failed: %w", query.GetID(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("execute %s failed: %w", query.GetID(), err)
	}
	return affected, nil
}

// BeginTx starts a transaction bound to ctx.
func (c *DBClient) BeginTx(ctx context.Context) (model.TxInterface, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return model.NewTx(ctx, tx, c.dbType), nil
}

// GetDBType returns the database type this client targets.
func (c *DBClient) GetDBType() string {
	return c.dbType
}
