package db

import (
	"testing"
)

func TestConnect_ShouldRejectEmptyURL(t *testing.T) {
	if _, err := Connect(""); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestConnect_ShouldOpenLocalDatabase(t *testing.T) {
	orig := driverName
	driverName = "sqlite"
	defer func() { driverName = orig }()

	conn, err := Connect("file:" + t.TempDir() + "/fekra.db")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		t.Errorf("ping after connect: %v", err)
	}
}

func TestEnsureSchema_ShouldCreateTablesIdempotently(t *testing.T) {
	orig := driverName
	driverName = "sqlite"
	defer func() { driverName = orig }()

	conn, err := Connect("file:" + t.TempDir() + "/fekra.db")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Close()

	textIndex, err := EnsureSchema(conn)
	if err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// Running it again must not fail.
	again, err := EnsureSchema(conn)
	if err != nil {
		t.Fatalf("EnsureSchema second run: %v", err)
	}
	if textIndex != again {
		t.Errorf("textIndex flag unstable: %v then %v", textIndex, again)
	}

	if _, err := conn.Exec(`INSERT INTO documents (collection, key, body) VALUES ('t', 'k', '{}')`); err != nil {
		t.Errorf("documents table unusable: %v", err)
	}
}
