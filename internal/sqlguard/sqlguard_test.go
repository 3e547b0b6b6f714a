package sqlguard

import "testing"

func TestIsWriteIntent_WriteStatements(t *testing.T) {
	writes := []string{
		"INSERT INTO users VALUES (1, 'test')",
		"UPDATE users SET name = 'test'",
		"DELETE FROM users",
		"DROP TABLE users",
		"CREATE TABLE test (id INT)",
		"ALTER TABLE users ADD COLUMN age INT",
		"TRUNCATE TABLE users",
		"REPLACE INTO users VALUES (1, 'test')",
		"  insert into users values (1)", // leading whitespace, lowercase
		"\n\tDELETE FROM orders WHERE id = 3",
		"TRUNCATE",
	}

	for _, query := range writes {
		t.Run(query, func(t *testing.T) {
			if !IsWriteIntent(query) {
				t.Errorf("Expected %q to classify as write intent", query)
			}
		})
	}
}

func TestIsWriteIntent_ReadStatements(t *testing.T) {
	reads := []string{
		"SELECT * FROM users",
		"select id, name from users",
		"SHOW TABLES",
		"DESCRIBE users",
		"DESC users",
		"EXPLAIN SELECT * FROM users",
		"SELECT created_at FROM orders",       // 'created' contains 'create'
		"SELECT * FROM inserted_events",       // table name starts with a keyword
		"SELECT 'DROP TABLE users' AS phrase", // keyword in string literal
		"",
		"   ",
	}

	for _, query := range reads {
		t.Run(query, func(t *testing.T) {
			if IsWriteIntent(query) {
				t.Errorf("Expected %q to classify as read intent", query)
			}
		})
	}
}

func TestIsWriteIntent_KeywordPrefixWords(t *testing.T) {
	// A word that merely starts with a write keyword is not a write.
	queries := []string{
		"INSERTED_ROWS()", // not a real statement, but exercises the boundary
		"UPDATES FROM somewhere",
		"DELETED",
	}
	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			if IsWriteIntent(query) {
				t.Errorf("Expected %q not to classify as write intent", query)
			}
		})
	}
}

func TestApplyRowLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{
			name:     "unbounded select gets a limit",
			input:    "SELECT * FROM users",
			limit:    1000,
			expected: "SELECT * FROM users LIMIT 1000",
		},
		{
			name:     "lowercase select gets a limit",
			input:    "select id from users",
			limit:    50,
			expected: "select id from users LIMIT 50",
		},
		{
			name:     "trailing semicolon is stripped before appending",
			input:    "SELECT * FROM users;",
			limit:    10,
			expected: "SELECT * FROM users LIMIT 10",
		},
		{
			name:     "existing limit passes through",
			input:    "SELECT * FROM users LIMIT 5",
			limit:    1000,
			expected: "SELECT * FROM users LIMIT 5",
		},
		{
			name:     "existing lowercase limit passes through",
			input:    "select * from users limit 5",
			limit:    1000,
			expected: "select * from users limit 5",
		},
		{
			name:     "non-select passes through",
			input:    "SHOW TABLES",
			limit:    1000,
			expected: "SHOW TABLES",
		},
		{
			name:     "write statement passes through",
			input:    "DELETE FROM users",
			limit:    1000,
			expected: "DELETE FROM users",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyRowLimit(tc.input, tc.limit)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
