package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry, err := NewRegistry(jobA, nil, jobB)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("jobs returned out of order")
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
	if names := registry.Names(); len(names) != 2 || names[0] != "a" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegistryRejectsDuplicateAndBlankNames(t *testing.T) {
	if _, err := NewRegistry(&stubJob{name: "audit"}, &stubJob{name: "audit"}); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
	var registry Registry
	if err := registry.Register(&stubJob{name: "  "}); err == nil {
		t.Fatal("expected blank name to be rejected")
	}
}

func TestRegistryLookup(t *testing.T) {
	job := &stubJob{name: "order-reference-audit"}
	registry, err := NewRegistry(job)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if got, ok := registry.Lookup(" order-reference-audit "); !ok || got != job {
		t.Fatalf("expected lookup hit")
	}
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatal("expected lookup miss")
	}
}
