package registry

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"

	"github.com/payaction/channel_layer/internal/app/storage/memory"
	apperr "github.com/payaction/channel_layer/internal/errors"
)

func ownerAddress() string {
	return address.Uint160ToString(util.Uint160{0x42})
}

func validRequest(name string) RegisterRequest {
	return RegisterRequest{
		ChannelName:  name,
		Description:  "A channel for " + name + " listeners",
		Fee:          0.5,
		OwnerAddress: ownerAddress(),
		ContactLink:  "https://t.me/" + strings.ReplaceAll(strings.ToLower(name), " ", ""),
	}
}

func newService() *Service {
	return New(memory.New(), Config{BaseURL: "https://pay.example.org"}, nil)
}

func TestRegisterAndResolve(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	rec, err := svc.Register(ctx, validRequest("Test Show"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Route != "/channels/test-show" {
		t.Fatalf("route = %q, want /channels/test-show", rec.Route)
	}
	if rec.ExternalLink != "https://pay.example.org/channels/test-show" {
		t.Fatalf("external link = %q", rec.ExternalLink)
	}
	if rec.CoverImage != DefaultCoverImage {
		t.Fatalf("cover image = %q, want default", rec.CoverImage)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("created at not set")
	}

	got, err := svc.Resolve(ctx, "Test Show")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Route != rec.Route || got.OwnerAddress != ownerAddress() {
		t.Fatalf("unexpected resolved record: %+v", got)
	}

	// Resolution goes through the derived route, so name variants hit too.
	if _, err := svc.Resolve(ctx, "  test   SHOW "); err != nil {
		t.Fatalf("Resolve name variant: %v", err)
	}
}

func TestRegisterTrimsInput(t *testing.T) {
	svc := newService()

	rec, err := svc.Register(context.Background(), RegisterRequest{
		ChannelName:  "  Test Show  ",
		Description:  "  A show about testing  ",
		Fee:          1,
		OwnerAddress: "  " + ownerAddress() + "  ",
		ContactLink:  " https://t.me/testshow ",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.ChannelName != "Test Show" || rec.Description != "A show about testing" {
		t.Fatalf("fields not trimmed: %+v", rec)
	}
}

func TestRegisterDuplicateRoute(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRequest("Test Show")); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Same route via different casing.
	_, err := svc.Register(ctx, validRequest("TEST SHOW"))
	if err == nil {
		t.Fatal("duplicate Register = nil, want error")
	}
	if apperr.Code(err) != apperr.CodeDuplicateChannel {
		t.Fatalf("duplicate code = %s, want %s", apperr.Code(err), apperr.CodeDuplicateChannel)
	}
}

func TestRegisterValidationPrecedence(t *testing.T) {
	svc := newService()

	// Everything invalid at once; the name error wins.
	_, err := svc.Register(context.Background(), RegisterRequest{
		ChannelName:  "x",
		Description:  "short",
		Fee:          -1,
		OwnerAddress: "bogus",
		ContactLink:  "not a url",
	})
	if apperr.Code(err) != apperr.CodeInvalidName {
		t.Fatalf("code = %s, want %s", apperr.Code(err), apperr.CodeInvalidName)
	}

	// Fix the name; the description error is next.
	_, err = svc.Register(context.Background(), RegisterRequest{
		ChannelName:  "Valid Name",
		Description:  "short",
		Fee:          -1,
		OwnerAddress: "bogus",
		ContactLink:  "not a url",
	})
	if apperr.Code(err) != apperr.CodeInvalidDescription {
		t.Fatalf("code = %s, want %s", apperr.Code(err), apperr.CodeInvalidDescription)
	}
}

func TestRegisterRejectsInvalidCoverImage(t *testing.T) {
	svc := newService()

	req := validRequest("Test Show")
	req.CoverImage = "ftp://example.org/cover.png"
	_, err := svc.Register(context.Background(), req)
	if apperr.Code(err) != apperr.CodeInvalidURL {
		t.Fatalf("code = %s, want %s", apperr.Code(err), apperr.CodeInvalidURL)
	}
}

func TestRegisterDirectLinkMode(t *testing.T) {
	svc := New(memory.New(), Config{LinkMode: LinkModeDirect}, nil)

	req := validRequest("Test Show")
	req.ExternalLink = "https://shows.example.org/test-show"
	rec, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.ExternalLink != req.ExternalLink {
		t.Fatalf("external link = %q, want supplied link", rec.ExternalLink)
	}

	req2 := validRequest("Other Show")
	req2.ExternalLink = "not a url"
	if _, err := svc.Register(context.Background(), req2); err == nil {
		t.Fatal("direct mode accepted malformed external link")
	}
}

func TestConcurrentDistinctRegistrations(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	names := []string{"Alpha Show", "Beta Show"}
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, validRequest(names[i]))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Register %q: %v", names[i], err)
		}
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List returned %d channels, want 2", len(summaries))
	}
}

func TestConcurrentCollidingRegistrations(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, validRequest("Test Show"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if apperr.Code(err) != apperr.CodeDuplicateChannel {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d colliding registrations succeeded, want exactly 1", succeeded)
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("List returned %d channels, want 1", len(summaries))
	}
}

func TestListPreservesOrderAndHidesOwner(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, name := range []string{"First Show", "Second Show", "Third Show"} {
		if _, err := svc.Register(ctx, validRequest(name)); err != nil {
			t.Fatalf("Register %q: %v", name, err)
		}
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"First Show", "Second Show", "Third Show"}
	for i, name := range want {
		if summaries[i].ChannelName != name {
			t.Fatalf("summary %d = %q, want %q", i, summaries[i].ChannelName, name)
		}
	}

	data, err := json.Marshal(summaries)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "ownerAddress") || strings.Contains(string(data), ownerAddress()) {
		t.Fatalf("listing leaks owner address: %s", data)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := newService().Resolve(context.Background(), "No Such Show")
	if apperr.Code(err) != apperr.CodeNotFound {
		t.Fatalf("code = %s, want %s", apperr.Code(err), apperr.CodeNotFound)
	}
}
