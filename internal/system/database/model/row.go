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
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ScanRows reads all rows into maps keyed by upper-cased column name and closes the result set.
// Text columns returned as []byte are converted to string. Binary columns stay []byte.
func ScanRows(rows *sqlx.Rows) ([]map[string]interface{}, error) {
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	binary := make(map[string]bool, len(columnTypes))
	for _, ct := range columnTypes {
		binary[strings.ToUpper(ct.Name())] = isBinaryType(ct.DatabaseTypeName())
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		raw := make(map[string]interface{}, len(columnTypes))
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(raw))
		for key, value := range raw {
			key = strings.ToUpper(key)
			if b, ok := value.([]byte); ok && !binary[key] {
				value = string(b)
			}
			row[key] = value
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return results, nil
}

func isBinaryType(name string) bool {
	name = strings.ToUpper(name)
	return strings.HasSuffix(name, "BLOB") || name == "BYTEA" || name == "BINARY" || name == "VARBINARY"
}

// AsString returns the column value as a string.
func AsString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

// AsInt64 returns the column value as an int64, accepting the numeric shapes drivers produce.
func AsInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// AsBool returns the column value as a bool. Integer columns are true when non-zero.
func AsBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	if n, ok := AsInt64(value); ok {
		return n != 0
	}
	return false
}

// AsBytes returns the column value as raw bytes.
func AsBytes(value interface{}) []byte {
	switch v := value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}
