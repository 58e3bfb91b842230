package storage

import "testing"

func TestTranslatePostgres(t *testing.T) {
	tests := []struct {
		name      string
		stmt      string
		want      string
		wantCount int
	}{
		{
			name:      "no placeholders",
			stmt:      "SELECT 1",
			want:      "SELECT 1",
			wantCount: 0,
		},
		{
			name:      "single placeholder",
			stmt:      "SELECT * FROM vote WHERE song_id = ?",
			want:      "SELECT * FROM vote WHERE song_id = $1",
			wantCount: 1,
		},
		{
			name:      "ordinals follow left-to-right order",
			stmt:      "INSERT INTO vote (song_id, polarity, recorded_at) VALUES (?, ?, ?)",
			want:      "INSERT INTO vote (song_id, polarity, recorded_at) VALUES ($1, $2, $3)",
			wantCount: 3,
		},
		{
			name:      "placeholder character inside string literal is not counted",
			stmt:      "SELECT * FROM vote WHERE song_id = 'what?' AND voter_fingerprint = ?",
			want:      "SELECT * FROM vote WHERE song_id = 'what?' AND voter_fingerprint = $1",
			wantCount: 1,
		},
		{
			name:      "repeated placeholder char in one literal",
			stmt:      "UPDATE vote SET session_id = '??' WHERE id = ?",
			want:      "UPDATE vote SET session_id = '??' WHERE id = $1",
			wantCount: 1,
		},
		{
			name:      "escaped quote does not end the literal",
			stmt:      "SELECT * FROM vote WHERE song_id = 'it''s?' AND id = ?",
			want:      "SELECT * FROM vote WHERE song_id = 'it''s?' AND id = $1",
			wantCount: 1,
		},
		{
			name:      "placeholders on both sides of a literal",
			stmt:      "SELECT ? , 'a?b' , ?",
			want:      "SELECT $1 , 'a?b' , $2",
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := translatePostgres(tt.stmt)
			if got != tt.want {
				t.Errorf("translated statement mismatch\n got: %s\nwant: %s", got, tt.want)
			}
			if count != tt.wantCount {
				t.Errorf("Expected %d placeholders, got %d", tt.wantCount, count)
			}
		})
	}
}

func TestCountPlaceholders(t *testing.T) {
	if n := countPlaceholders("SELECT * FROM vote WHERE song_id = ? AND polarity = ?"); n != 2 {
		t.Errorf("Expected 2 placeholders, got %d", n)
	}
	if n := countPlaceholders("SELECT '?' FROM vote"); n != 0 {
		t.Errorf("Expected 0 placeholders, got %d", n)
	}
}

func TestCheckArgCount(t *testing.T) {
	err := checkArgCount("exec", "INSERT INTO vote (song_id) VALUES (?)", 1, 2)
	if err == nil {
		t.Fatal("Expected translation error for argument count mismatch")
	}
	if !IsTranslation(err) {
		t.Errorf("Expected IsTranslation to report true, got %v", err)
	}

	if err := checkArgCount("exec", "whatever", 2, 2); err != nil {
		t.Errorf("Expected matching counts to pass, got %v", err)
	}
}

func TestIsValuesInsert(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		want bool
	}{
		{"values insert", "INSERT INTO vote (song_id) VALUES (?)", true},
		{"leading whitespace", "  insert into vote (song_id) values (?)", true},
		{"insert from select", "INSERT INTO vote (song_id) SELECT song_id FROM vote_backup", false},
		{"select before values keyword", "INSERT INTO vote (song_id) SELECT song_id FROM backup_values", false},
		{"update", "UPDATE vote SET polarity = ?", false},
		{"already has returning", "INSERT INTO vote (song_id) VALUES (?) RETURNING id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValuesInsert(tt.stmt); got != tt.want {
				t.Errorf("isValuesInsert(%q) = %v, want %v", tt.stmt, got, tt.want)
			}
		})
	}
}
