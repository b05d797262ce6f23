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

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/log"
)

const consentFormColumns = `
	ID VARCHAR(36) NOT NULL PRIMARY KEY,
	STUDY_CODE VARCHAR(255) NULL,
	INSTITUTION VARCHAR(32) NOT NULL,
	OTHER_INSTITUTION VARCHAR(255) NULL,
	RESEARCH_TYPE VARCHAR(32) NOT NULL,
	LANGUAGE VARCHAR(8) NOT NULL,
	TITLE VARCHAR(512) NOT NULL,
	PURPOSE TEXT NOT NULL,
	GOAL TEXT NOT NULL,
	START_DATE VARCHAR(10) NOT NULL,
	END_DATE VARCHAR(10) NOT NULL,
	DURATION INTEGER NOT NULL,
	DURATION_UNIT VARCHAR(16) NOT NULL,
	PARTICIPANTS INTEGER NOT NULL,
	REPEATED_PARTICIPATION BOOLEAN NOT NULL,
	UNCOMFORTABLE_QUESTIONS BOOLEAN NOT NULL,
	COMPENSATION VARCHAR(32) NOT NULL,
	PROCEDURE_STEPS TEXT NOT NULL,
	COLLECTED_DATA TEXT NOT NULL,
	DATA_DELETION TEXT NOT NULL,
	ANONYMIZATION VARCHAR(16) NOT NULL,
	PUBLICATION VARCHAR(32) NOT NULL,
	PRINCIPAL_INVESTIGATOR VARCHAR(255) NOT NULL,
	PRINCIPAL_INVESTIGATOR_EMAIL VARCHAR(255) NOT NULL,
	RESEARCHER_NAMES TEXT NULL,
	RESEARCHER_EMAILS TEXT NULL,
	FUNDING TEXT NULL,
	ETHICAL_COMMITTEE TEXT NULL,
	SIGNING_METHOD VARCHAR(16) NOT NULL,
	FORM_LINK TEXT NOT NULL,
	CREATED_TIME BIGINT NOT NULL,
	UPDATED_TIME BIGINT NOT NULL`

const participantResponseColumns = `
	ID VARCHAR(36) NOT NULL PRIMARY KEY,
	CONSENT_FORM_ID VARCHAR(36) NOT NULL,
	PARTICIPANT_EMAIL VARCHAR(255) NOT NULL,
	FIRST_NAME VARCHAR(255) NULL,
	LAST_NAME VARCHAR(255) NULL,
	CONSENT_STATE VARCHAR(16) NOT NULL,
	STUDY_KEY VARCHAR(270) NOT NULL,
	CREATED_TIME BIGINT NOT NULL,
	UPDATED_TIME BIGINT NOT NULL,
	CONSTRAINT UQ_RESPONSE_EMAIL_STUDY UNIQUE (PARTICIPANT_EMAIL, STUDY_KEY),
	CONSTRAINT FK_RESPONSE_FORM FOREIGN KEY (CONSENT_FORM_ID) REFERENCES CONSENT_FORM (ID)`

const signatureColumnsFormat = `
	RESPONSE_ID VARCHAR(36) NOT NULL PRIMARY KEY,
	CONTENT %s NOT NULL,
	CONTENT_TYPE VARCHAR(64) NOT NULL,
	CREATED_TIME BIGINT NOT NULL,
	UPDATED_TIME BIGINT NOT NULL,
	CONSTRAINT FK_SIGNATURE_RESPONSE FOREIGN KEY (RESPONSE_ID) REFERENCES PARTICIPANT_RESPONSE (ID) ON DELETE CASCADE`

// SchemaStatements returns the DDL for the given database type, in execution order.
func SchemaStatements(dbType string) []string {
	switch dbType {
	case config.DatabaseTypePostgres:
		return []string{
			"CREATE TABLE IF NOT EXISTS CONSENT_FORM (" + consentFormColumns + "\n)",
			"CREATE INDEX IF NOT EXISTS IDX_CONSENT_FORM_STUDY_CODE ON CONSENT_FORM (STUDY_CODE)",
			"CREATE TABLE IF NOT EXISTS PARTICIPANT_RESPONSE (" + participantResponseColumns + "\n)",
			"CREATE INDEX IF NOT EXISTS IDX_RESPONSE_FORM ON PARTICIPANT_RESPONSE (CONSENT_FORM_ID)",
			"CREATE TABLE IF NOT EXISTS RESPONSE_SIGNATURE (" + fmt.Sprintf(signatureColumnsFormat, "BYTEA") + "\n)",
		}
	case config.DatabaseTypeSQLite:
		return []string{
			"CREATE TABLE IF NOT EXISTS CONSENT_FORM (" + consentFormColumns + "\n)",
			"CREATE INDEX IF NOT EXISTS IDX_CONSENT_FORM_STUDY_CODE ON CONSENT_FORM (STUDY_CODE)",
			"CREATE TABLE IF NOT EXISTS PARTICIPANT_RESPONSE (" + participantResponseColumns + "\n)",
			"CREATE INDEX IF NOT EXISTS IDX_RESPONSE_FORM ON PARTICIPANT_RESPONSE (CONSENT_FORM_ID)",
			"CREATE TABLE IF NOT EXISTS RESPONSE_SIGNATURE (" + fmt.Sprintf(signatureColumnsFormat, "BLOB") + "\n)",
		}
	default:
		// MySQL has no CREATE INDEX IF NOT EXISTS, so secondary indexes are declared inline.
		return []string{
			"CREATE TABLE IF NOT EXISTS CONSENT_FORM (" + consentFormColumns +
				",\n\tINDEX IDX_CONSENT_FORM_STUDY_CODE (STUDY_CODE)\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
			"CREATE TABLE IF NOT EXISTS PARTICIPANT_RESPONSE (" + participantResponseColumns +
				",\n\tINDEX IDX_RESPONSE_FORM (CONSENT_FORM_ID)\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
			"CREATE TABLE IF NOT EXISTS RESPONSE_SIGNATURE (" + fmt.Sprintf(signatureColumnsFormat, "LONGBLOB") +
				"\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		}
	}
}

// Migrate creates any missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Database"))

	for i, stmt := range SchemaStatements(db.Type) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed (%s): %w", i, firstLine(stmt), err)
		}
	}

	logger.Info("Database schema is up to date", log.String("type", db.Type))
	return nil
}

func firstLine(stmt string) string {
	if idx := strings.Index(stmt, "("); idx > 0 {
		return strings.TrimSpace(stmt[:idx])
	}
	return stmt
}
