package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/repository/memory"
	"github.com/fedmod/ostracon/pkg/usecase"
)

type fakeResolver struct {
	uuids map[string]string
	err   error
	calls int
}

func (r *fakeResolver) ResolveUUID(ctx context.Context, name string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.uuids[name], nil
}

func newParseUC(t *testing.T, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	federation, err := model.NewFederation(nil, "")
	gt.NoError(t, err).Required()
	return usecase.New(memory.New(), federation, opts...)
}

func TestParseRequest(t *testing.T) {
	uc := newParseUC(t)

	req, err := uc.ParseRequest(context.Background(), `Username: JohnDoe
User ID: U123456789012
Reason: Griefing and harassment
across several communities`)
	gt.NoError(t, err).Required()

	gt.Value(t, req.Target.DisplayName).Equal("JohnDoe")
	gt.Value(t, req.Target.ID).Equal(types.UserID("U123456789012"))
	gt.Value(t, req.Reason).Equal("Griefing and harassment\nacross several communities")
	gt.Value(t, req.Status).Equal(types.RequestStatusDraft)
	gt.Value(t, len(req.AuxiliaryIDs)).Equal(0)
}

func TestParseRequestWithProfile(t *testing.T) {
	uc := newParseUC(t)

	req, err := uc.ParseRequest(context.Background(), `Username: JohnDoe
User ID: U123456789012
Profile name (if applicable): JohnDoe123
Profile UUID (if applicable): 550e8400-e29b-41d4-a716-446655440000
Reason: spam`)
	gt.NoError(t, err).Required()

	gt.Value(t, req.AuxiliaryIDs[model.AuxProfileName]).Equal("JohnDoe123")
	gt.Value(t, req.AuxiliaryIDs[model.AuxProfileUUID]).Equal("550e8400-e29b-41d4-a716-446655440000")
}

func TestParseRequestResolvesUUID(t *testing.T) {
	resolver := &fakeResolver{uuids: map[string]string{"JohnDoe123": "abc-123"}}
	uc := newParseUC(t, usecase.WithResolver(resolver))

	req, err := uc.ParseRequest(context.Background(), `Username: JohnDoe
User ID: U123456789012
Profile name: JohnDoe123
Reason: spam`)
	gt.NoError(t, err).Required()

	gt.Value(t, resolver.calls).Equal(1)
	gt.Value(t, req.AuxiliaryIDs[model.AuxProfileUUID]).Equal("abc-123")
}

func TestParseRequestResolverFailureIsNotFatal(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("profile service down")}
	uc := newParseUC(t, usecase.WithResolver(resolver))

	req, err := uc.ParseRequest(context.Background(), `Username: JohnDoe
User ID: U123456789012
Profile name: JohnDoe123
Reason: spam`)
	gt.NoError(t, err).Required()

	gt.Value(t, req.AuxiliaryIDs[model.AuxProfileName]).Equal("JohnDoe123")
	gt.Value(t, req.AuxiliaryIDs[model.AuxProfileUUID]).Equal("")
}

func TestParseRequestExplicitUUIDSkipsResolver(t *testing.T) {
	resolver := &fakeResolver{}
	uc := newParseUC(t, usecase.WithResolver(resolver))

	_, err := uc.ParseRequest(context.Background(), `Username: JohnDoe
User ID: U123456789012
Profile name: JohnDoe123
Profile UUID: already-known
Reason: spam`)
	gt.NoError(t, err).Required()
	gt.Value(t, resolver.calls).Equal(0)
}

func TestParseRequestMissingFields(t *testing.T) {
	uc := newParseUC(t)

	_, err := uc.ParseRequest(context.Background(), "Username: JohnDoe")
	gt.Error(t, err)

	var parseErr *usecase.ParseError
	gt.Bool(t, errors.As(err, &parseErr)).True()
	gt.Array(t, parseErr.Missing).Length(2)
	gt.Value(t, parseErr.Template()).Equal(model.RequestTemplate)
}

func TestParseRequestTemplateExample(t *testing.T) {
	uc := newParseUC(t)

	req, err := uc.ParseRequest(context.Background(), model.RequestExample)
	gt.NoError(t, err).Required()
	gt.Value(t, req.Target.DisplayName).Equal("JohnDoe")
	gt.Value(t, req.AuxiliaryIDs[model.AuxProfileUUID]).Equal("550e8400-e29b-41d4-a716-446655440000")
}
