package domain_test

import (
	"testing"

	"github.com/snpflow/snpflow/pkg/domain"
)

func TestRunStatus_CanTransitTo(t *testing.T) {
	everyStatus := []domain.RunStatus{
		domain.Waiting, domain.Ready, domain.Starting, domain.Running,
		domain.Completing, domain.Aborting, domain.Done, domain.Failed,
	}

	allowed := map[domain.RunStatus][]domain.RunStatus{
		domain.Waiting:    {domain.Ready, domain.Aborting},
		domain.Ready:      {domain.Starting, domain.Aborting},
		domain.Starting:   {domain.Running, domain.Completing, domain.Aborting},
		domain.Running:    {domain.Completing, domain.Aborting},
		domain.Completing: {domain.Done},
		domain.Aborting:   {domain.Failed},
		domain.Done:       {},
		domain.Failed:     {domain.Waiting},
	}

	for _, from := range everyStatus {
		for _, to := range everyStatus {
			expected := false
			for _, a := range allowed[from] {
				if a == to {
					expected = true
					break
				}
			}

			if actual := from.CanTransitTo(to); actual != expected {
				t.Errorf(
					"%s -> %s: (actual, expected) = (%v, %v)",
					from, to, actual, expected,
				)
			}
		}
	}
}

func TestRunStatus_predicates(t *testing.T) {
	type then struct {
		hasStarted bool
		processing bool
		terminal   bool
	}

	for status, expected := range map[domain.RunStatus]then{
		domain.Waiting:    {hasStarted: false, processing: false, terminal: false},
		domain.Ready:      {hasStarted: false, processing: false, terminal: false},
		domain.Starting:   {hasStarted: false, processing: false, terminal: false},
		domain.Running:    {hasStarted: true, processing: true, terminal: false},
		domain.Completing: {hasStarted: true, processing: true, terminal: false},
		domain.Aborting:   {hasStarted: true, processing: true, terminal: false},
		domain.Done:       {hasStarted: true, processing: false, terminal: true},
		domain.Failed:     {hasStarted: true, processing: false, terminal: true},
	} {
		if actual := status.HasStarted(); actual != expected.hasStarted {
			t.Errorf("%s.HasStarted(): (actual, expected) = (%v, %v)", status, actual, expected.hasStarted)
		}
		if actual := status.Processing(); actual != expected.processing {
			t.Errorf("%s.Processing(): (actual, expected) = (%v, %v)", status, actual, expected.processing)
		}
		if actual := status.Terminal(); actual != expected.terminal {
			t.Errorf("%s.Terminal(): (actual, expected) = (%v, %v)", status, actual, expected.terminal)
		}
	}
}

func TestAsRunStatus(t *testing.T) {
	for _, status := range []domain.RunStatus{
		domain.Waiting, domain.Ready, domain.Starting, domain.Running,
		domain.Completing, domain.Aborting, domain.Done, domain.Failed,
	} {
		actual, err := domain.AsRunStatus(status.String())
		if err != nil {
			t.Errorf("unexpected error for %s: %s", status, err)
		}
		if actual != status {
			t.Errorf("(actual, expected) = (%s, %s)", actual, status)
		}
	}

	if _, err := domain.AsRunStatus("no-such-status"); err == nil {
		t.Error("unknown status should cause error")
	}
}
