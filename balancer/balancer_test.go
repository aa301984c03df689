package balancer_test

import (
	"testing"

	"github.com/vektorlab/chwire/balancer"
)

func TestRoundRobinSequence(t *testing.T) {
	t.Parallel()

	s1 := balancer.Endpoint{Host: "s1", Port: 9000}
	s2 := balancer.Endpoint{Host: "s2", Port: 9000}
	s3 := balancer.Endpoint{Host: "s3", Port: 9000}
	endpoints := []balancer.Endpoint{s1, s2, s3}

	var rr balancer.RoundRobin
	var got []balancer.Endpoint
	for i := 0; i < 6; i++ {
		ep, ok := rr.Next(endpoints, nil)
		if !ok {
			t.Fatalf("Next() ok = false at i=%d", i)
		}
		got = append(got, ep)
	}
	want := []balancer.Endpoint{s1, s2, s3, s1, s2, s3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRoundRobinSkipsUnhealthy(t *testing.T) {
	t.Parallel()

	s1 := balancer.Endpoint{Host: "s1", Port: 9000}
	s2 := balancer.Endpoint{Host: "s2", Port: 9000}
	s3 := balancer.Endpoint{Host: "s3", Port: 9000}
	endpoints := []balancer.Endpoint{s1, s2, s3}

	checker := balancer.NewHealthChecker(3)
	checker.RecordFailure(s1)
	checker.RecordFailure(s1)
	checker.RecordFailure(s1)
	if checker.Healthy(s1) {
		t.Fatal("s1 should be unhealthy after 3 failures")
	}

	var rr balancer.RoundRobin
	for i := 0; i < 4; i++ {
		ep, ok := rr.Next(endpoints, checker)
		if !ok {
			t.Fatalf("Next() ok = false at i=%d", i)
		}
		if ep == s1 {
			t.Errorf("Next() returned unhealthy endpoint s1 at i=%d", i)
		}
	}
}

func TestHealthCheckerRecoversOnSuccess(t *testing.T) {
	t.Parallel()

	ep := balancer.Endpoint{Host: "s1", Port: 9000}
	checker := balancer.NewHealthChecker(3)
	checker.RecordFailure(ep)
	checker.RecordFailure(ep)
	checker.RecordFailure(ep)
	if checker.Healthy(ep) {
		t.Fatal("expected unhealthy")
	}
	checker.RecordSuccess(ep)
	if !checker.Healthy(ep) {
		t.Fatal("expected healthy after RecordSuccess")
	}
}

func TestAllUnhealthyReturnsFalse(t *testing.T) {
	t.Parallel()

	ep := balancer.Endpoint{Host: "s1", Port: 9000}
	checker := balancer.NewHealthChecker(1)
	checker.RecordFailure(ep)

	var rr balancer.RoundRobin
	if _, ok := rr.Next([]balancer.Endpoint{ep}, checker); ok {
		t.Fatal("Next() ok = true, want false when all unhealthy")
	}
}

func TestFirstAvailable(t *testing.T) {
	t.Parallel()

	s1 := balancer.Endpoint{Host: "s1", Port: 9000}
	s2 := balancer.Endpoint{Host: "s2", Port: 9000}
	checker := balancer.NewHealthChecker(1)
	checker.RecordFailure(s1)

	var fa balancer.FirstAvailable
	ep, ok := fa.Next([]balancer.Endpoint{s1, s2}, checker)
	if !ok || ep != s2 {
		t.Errorf("Next() = %v, %v, want s2, true", ep, ok)
	}
}
