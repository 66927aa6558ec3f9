package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/ajna-inc/kanon-ledger/pkg/core/events"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

func TestAppendEntry_LinksToPreviousTailAndAdvances(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	def := testDefinition()

	if _, err := e.defs.Create(ctx, def, e.issuerRequest()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	pos1, err := e.chain.Append(ctx, testEntry(def.Id(), "0x20", "", nil, []uint32{2, 3}), e.issuerRequest())
	if err != nil {
		t.Fatalf("first Append error: %v", err)
	}
	tail, err := e.defs.LastEntryPointer(ctx, def.Id())
	if err != nil {
		t.Fatalf("LastEntryPointer error: %v", err)
	}
	if tail != pos1 {
		t.Fatalf("expected tail %d after first append, got %d", pos1, tail)
	}

	pos2, err := e.chain.Append(ctx, testEntry(def.Id(), "0x30", "0x20", nil, []uint32{5}), e.issuerRequest())
	if err != nil {
		t.Fatalf("second Append error: %v", err)
	}
	if pos2 <= pos1 {
		t.Fatalf("expected strictly increasing positions, got %d then %d", pos1, pos2)
	}

	// The second notification must point back at the first
	notifications, err := e.eventLog.Range(ctx, registry.KeyForId(def.Id()), pos2, pos2)
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected one notification at %d, got %d", pos2, len(notifications))
	}
	if notifications[0].PreviousEntryPointer != pos1 {
		t.Fatalf("expected previous pointer %d, got %d", pos1, notifications[0].PreviousEntryPointer)
	}
}

func TestAppendEntry_UnknownDefinitionFailsWithNotFound(t *testing.T) {
	e := newTestEngine(t)

	entry := testEntry(testDefinition().Id(), "0x20", "", nil, []uint32{1})
	_, err := e.chain.Append(context.Background(), entry, e.issuerRequest())
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestAppendEntry_IssuerMismatchFailsWithNotAuthorized(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	def := testDefinition()

	if _, err := e.defs.Create(ctx, def, e.issuerRequest()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	entry := testEntry(def.Id(), "0x20", "", nil, []uint32{1})
	entry.IssuerId = testOtherDid
	_, err := e.chain.Append(ctx, entry, e.issuerRequest())
	if !errors.Is(err, registry.ErrNotAuthorized) {
		t.Fatalf("expected NotAuthorized, got %v", err)
	}
}

func TestAppendEntry_UnauthorizedPartyFailsWithNotAuthorized(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	def := testDefinition()

	if _, err := e.defs.Create(ctx, def, e.issuerRequest()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	req := WriteRequest{Identity: e.stranger, ActingParty: e.stranger}
	_, err := e.chain.Append(ctx, testEntry(def.Id(), "0x20", "", nil, []uint32{1}), req)
	if !errors.Is(err, registry.ErrNotAuthorized) {
		t.Fatalf("expected NotAuthorized, got %v", err)
	}

	// A failed append must not move the tail
	tail, err := e.defs.LastEntryPointer(ctx, def.Id())
	if err != nil {
		t.Fatalf("LastEntryPointer error: %v", err)
	}
	if !tail.IsZero() {
		t.Fatalf("expected zero tail after rejected append, got %d", tail)
	}
}

func TestAppendEntry_EmptyAccumulatorRejected(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	def := testDefinition()

	if _, err := e.defs.Create(ctx, def, e.issuerRequest()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	entry := testEntry(def.Id(), "", "", nil, []uint32{1})
	if _, err := e.chain.Append(ctx, entry, e.issuerRequest()); err == nil {
		t.Fatalf("expected validation error for empty accumulator")
	}
}

func TestAppendEntry_PublishesEvent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	def := testDefinition()

	if _, err := e.defs.Create(ctx, def, e.issuerRequest()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	var got *EntryCreatedEvent
	e.bus.Subscribe(events.EventEntryCreated, func(ev events.Event) {
		if data, ok := ev.Data.(EntryCreatedEvent); ok {
			got = &data
		}
	})

	pos, err := e.chain.Append(ctx, testEntry(def.Id(), "0x20", "", nil, []uint32{2}), e.issuerRequest())
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected EntryCreatedEvent")
	}
	if got.Position != pos || got.DefinitionId != def.Id() {
		t.Fatalf("unexpected event payload: %+v", got)
	}
	if !got.PreviousEntryPointer.IsZero() {
		t.Fatalf("expected zero previous pointer on first entry, got %d", got.PreviousEntryPointer)
	}
}

func TestAppendEntry_IndependentDefinitionsKeepSeparateChains(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	defA := testDefinition()
	defB := testDefinition()
	defB.Tag = "second"

	if _, err := e.defs.Create(ctx, defA, e.issuerRequest()); err != nil {
		t.Fatalf("Create A error: %v", err)
	}
	if _, err := e.defs.Create(ctx, defB, e.issuerRequest()); err != nil {
		t.Fatalf("Create B error: %v", err)
	}

	posA, err := e.chain.Append(ctx, testEntry(defA.Id(), "0xa1", "", nil, []uint32{1}), e.issuerRequest())
	if err != nil {
		t.Fatalf("Append A error: %v", err)
	}
	if _, err := e.chain.Append(ctx, testEntry(defB.Id(), "0xb1", "", nil, []uint32{7}), e.issuerRequest()); err != nil {
		t.Fatalf("Append B error: %v", err)
	}

	tailA, err := e.defs.LastEntryPointer(ctx, defA.Id())
	if err != nil {
		t.Fatalf("LastEntryPointer A error: %v", err)
	}
	if tailA != posA {
		t.Fatalf("definition A tail moved by definition B append: %d != %d", tailA, posA)
	}
}
