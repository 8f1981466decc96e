package history

import (
	"fmt"
	"testing"

	"health-bot/internal/llm"
)

func TestHistoryAppendGetReset(t *testing.T) {
	h := NewManager(10)
	userA := "U-a"
	userB := "U-b"

	h.AppendUser(userA, "hello")
	h.AppendAssistant(userA, "hi")
	h.AppendUser(userB, "foo")
	h.AppendAssistant(userB, "bar")

	msgsA := h.Get(userA)
	msgsB := h.Get(userB)

	if len(msgsA) != 2 || len(msgsB) != 2 {
		t.Fatalf("unexpected lengths: A=%d B=%d", len(msgsA), len(msgsB))
	}
	if msgsA[0].Role != "user" || msgsA[0].Content != "hello" {
		t.Fatalf("unexpected A[0]: %+v", msgsA[0])
	}
	if msgsA[1].Role != "assistant" || msgsA[1].Content != "hi" {
		t.Fatalf("unexpected A[1]: %+v", msgsA[1])
	}
	if msgsB[0].Role != "user" || msgsB[0].Content != "foo" {
		t.Fatalf("unexpected B[0]: %+v", msgsB[0])
	}

	// Ensure copy semantics (modifying returned slice does not affect internal state)
	msgsA[0] = llm.Message{Role: "user", Content: "mutated"}
	msgsA2 := h.Get(userA)
	if msgsA2[0].Content != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}

	h.Reset(userA)
	if len(h.Get(userA)) != 0 {
		t.Fatalf("reset did not clear user A")
	}
	if len(h.Get(userB)) != 2 {
		t.Fatalf("reset should not affect other users")
	}
}

func TestWindowTrimsOldest(t *testing.T) {
	h := NewManager(4)

	for i := 0; i < 10; i++ {
		h.AppendUser("U1", fmt.Sprintf("msg-%d", i))
	}
	msgs := h.Get("U1")
	if len(msgs) != 4 {
		t.Fatalf("window not enforced: %d turns", len(msgs))
	}
	if msgs[0].Content != "msg-6" || msgs[3].Content != "msg-9" {
		t.Fatalf("wrong turns kept: %+v", msgs)
	}
}

func TestSeed(t *testing.T) {
	h := NewManager(3)

	if h.Seeded("U1") {
		t.Fatalf("unseeded user reported seeded")
	}
	h.Seed("U1", []llm.Message{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two"},
		{Role: "user", Content: "three"},
		{Role: "assistant", Content: "four"},
	})
	if !h.Seeded("U1") {
		t.Fatalf("seed not effective")
	}
	msgs := h.Get("U1")
	if len(msgs) != 3 || msgs[0].Content != "two" {
		t.Fatalf("seed not trimmed to window: %+v", msgs)
	}
}
