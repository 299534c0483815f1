package walletdb

import "testing"

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndFindUserByIdentityKey(t *testing.T) {
	db := openTestDB(t)

	u, err := db.InsertUser("02aabbcc", "storage-1")
	if err != nil {
		t.Fatal(err)
	}
	if u.UserID == 0 {
		t.Fatal("expected non-zero userID")
	}

	found, err := db.FindUserByIdentityKey("02aabbcc")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.UserID != u.UserID {
		t.Fatalf("got %+v, want user %d", found, u.UserID)
	}

	missing, err := db.FindUserByIdentityKey("nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("expected nil for unknown identity key")
	}
}

func TestFindOrCreateDefaultBasketIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	b1, err := db.FindOrCreateDefaultBasketAndLabel(1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := db.FindOrCreateDefaultBasketAndLabel(1)
	if err != nil {
		t.Fatal(err)
	}
	if b1.BasketID != b2.BasketID {
		t.Error("expected the same default basket on repeated calls")
	}
}

func TestOutputInsertIndexAndSpendableLookup(t *testing.T) {
	db := openTestDB(t)

	out, err := db.InsertOutput(&Output{UserID: 1, Satoshis: 5000, Spendable: true})
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.InsertOutput(&Output{UserID: 1, Satoshis: 1000, Spendable: true})
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.InsertOutput(&Output{UserID: 1, Satoshis: 9000, Spendable: false})
	if err != nil {
		t.Fatal(err)
	}

	pool, err := db.SpendableOutputsForUser(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 spendable outputs, got %d", len(pool))
	}
	if pool[0].Satoshis != 1000 || pool[1].Satoshis != 5000 {
		t.Errorf("expected ascending satoshis order, got %d, %d", pool[0].Satoshis, pool[1].Satoshis)
	}

	// Mark the larger output unspendable and verify the index updates.
	out.Spendable = false
	if err := db.UpdateOutput(out); err != nil {
		t.Fatal(err)
	}
	pool2, err := db.SpendableOutputsForUser(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(pool2) != 1 {
		t.Fatalf("expected 1 spendable output after update, got %d", len(pool2))
	}
}

func TestReserveOutputsExclusivity(t *testing.T) {
	db := openTestDB(t)

	out, err := db.InsertOutput(&Output{UserID: 1, Satoshis: 1000, Spendable: true})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.ReserveOutputs([]uint64{out.OutputID}, "ref-A"); err != nil {
		t.Fatal(err)
	}
	if err := db.ReserveOutputs([]uint64{out.OutputID}, "ref-B"); err == nil {
		t.Error("expected ReservationConflict for a second reservation")
	}
	// Re-reserving under the same reference is fine (idempotent claim).
	if err := db.ReserveOutputs([]uint64{out.OutputID}, "ref-A"); err != nil {
		t.Errorf("expected no error re-reserving under the same reference: %v", err)
	}

	if err := db.ReleaseOutputs("ref-A"); err != nil {
		t.Fatal(err)
	}
	if _, reserved, err := db.IsReserved(out.OutputID); err != nil || reserved {
		t.Error("expected reservation to be released")
	}
	if err := db.ReserveOutputs([]uint64{out.OutputID}, "ref-B"); err != nil {
		t.Errorf("expected ref-B to succeed after release: %v", err)
	}
}

func TestActionInsertUpdateAndReferenceLookup(t *testing.T) {
	db := openTestDB(t)

	a, err := db.InsertAction(&Action{UserID: 1, Reference: "ref-1", Status: StatusUnsigned})
	if err != nil {
		t.Fatal(err)
	}

	found, err := db.GetActionByReference("ref-1")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.ActionID != a.ActionID {
		t.Fatal("expected to find action by reference")
	}

	a.Status = StatusSigned
	if err := db.UpdateAction(a); err != nil {
		t.Fatal(err)
	}
	reloaded, err := db.GetAction(a.ActionID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != StatusSigned {
		t.Errorf("expected status signed, got %v", reloaded.Status)
	}
}

func TestDeleteActionRemovesReferenceIndex(t *testing.T) {
	db := openTestDB(t)

	a, err := db.InsertAction(&Action{UserID: 1, Reference: "ref-del", Status: StatusFailed})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteAction(a.ActionID); err != nil {
		t.Fatal(err)
	}
	found, err := db.GetActionByReference("ref-del")
	if err != nil {
		t.Fatal(err)
	}
	if found != nil {
		t.Error("expected action to be gone after delete")
	}
}
