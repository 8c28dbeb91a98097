package mock_generator

import (
	"context"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/domain"
	"sync"
	"testing"
)

func TestStubVideoGenerator_TracksOperationsIndependently(t *testing.T) {
	generator := &StubVideoGenerator{PollsUntilDone: 2}
	ctx := context.Background()

	first, err := generator.Generate(ctx, outbound.GenerateVideoRequest{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := generator.Generate(ctx, outbound.GenerateVideoRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Name == second.Name {
		t.Fatal("expected distinct operation handles")
	}

	// Interleaved polls must advance each operation on its own count.
	status, err := generator.Poll(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if status.Done {
		t.Fatal("first operation done after a single poll")
	}
	status, err = generator.Poll(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	if status.Done {
		t.Fatal("second operation done after a single poll")
	}

	status, err = generator.Poll(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Done || status.ResultRef != "stub-result/"+first.Name {
		t.Fatalf("expected first operation done with its own result, got %+v", status)
	}
	status, err = generator.Poll(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Done || status.ResultRef != "stub-result/"+second.Name {
		t.Fatalf("expected second operation done with its own result, got %+v", status)
	}
}

func TestStubVideoGenerator_ConcurrentJobs(t *testing.T) {
	generator := &StubVideoGenerator{PollsUntilDone: 3}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle, err := generator.Generate(ctx, outbound.GenerateVideoRequest{})
			if err != nil {
				t.Error(err)
				return
			}
			var status domain.OperationStatus
			for polls := 0; !status.Done; polls++ {
				if polls > generator.PollsUntilDone {
					t.Errorf("operation %s not done after %d polls", handle.Name, polls)
					return
				}
				status, err = generator.Poll(ctx, handle)
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
