package intake_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/intake"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission/store"
)

var ngo = identity.Actor{ID: "Ocean Conservation NGO", Role: identity.RoleSubmitter}

func newService() (*intake.Service, *store.Memory) {
	mem := store.NewMemory()
	return intake.NewService(submission.NewService(mem, ledger.NewRecorder(mem))), mem
}

func TestService_Import(t *testing.T) {
	csv := `Project Name,Location,Collection Date,Submitted By,Carbon Value
Mangrove Restoration Project,"-1.2921,36.8219",2024-01-15,,150
Bad Coordinates,"95,0",2024-01-10,Blue Ocean Trust,
Coastal Wetland Protection,"-4.0435,39.6682",2024-01-10,Marine Life Foundation,180
No Date,"0,0",,Marine Life Foundation,
`

	svc, mem := newService()

	res, err := svc.Import(context.Background(), ngo, strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, res.Created, 1)
	assert.Equal(t, "Ocean Conservation NGO", res.Created[0].SubmittedBy)

	require.Len(t, res.Failed, 3)
	assert.Equal(t, 3, res.Failed[0].Line)
	assert.ErrorIs(t, res.Failed[0], submission.ErrValidation)
	assert.Equal(t, 4, res.Failed[1].Line)
	assert.ErrorIs(t, res.Failed[1], submission.ErrUnauthorized)
	assert.Equal(t, 5, res.Failed[2].Line)

	pending, err := mem.ListSubmissions(context.Background(), submission.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestService_Import_BadCarbonValueFailsOnlyItsRow(t *testing.T) {
	csv := `Project Name,Location,Collection Date,Carbon Value
Mangrove Restoration Project,"-1.2921,36.8219",2024-01-15,150
Seagrass Restoration Initiative,"2.0469,45.3182",someday,200
Coastal Wetland Protection,"-4.0435,39.6682",2024-01-10,lots
`

	svc, mem := newService()

	res, err := svc.Import(context.Background(), ngo, strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, res.Created, 1)
	assert.Equal(t, "Mangrove Restoration Project", res.Created[0].ProjectName)
	assert.Equal(t, "150", res.Created[0].CarbonValue.String())

	require.Len(t, res.Failed, 2)
	assert.Equal(t, 3, res.Failed[0].Line)
	assert.ErrorIs(t, res.Failed[0], submission.ErrValidation)
	assert.Equal(t, 4, res.Failed[1].Line)
	assert.ErrorIs(t, res.Failed[1], submission.ErrValidation)
	assert.Contains(t, res.Failed[1].Error(), `"lots"`)

	stored, err := mem.ListSubmissions(context.Background(), submission.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestService_Import_Unauthorized(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Import(context.Background(), identity.Actor{ID: "v", Role: identity.RoleVerifier}, strings.NewReader(""))
	assert.ErrorIs(t, err, submission.ErrUnauthorized)
}

type failingCreator struct{}

func (failingCreator) Create(context.Context, identity.Actor, submission.CreateParams) (*submission.Submission, error) {
	return nil, errors.New("connection reset")
}

func TestService_Import_StopsOnInfrastructureError(t *testing.T) {
	csv := "Project Name,Location,Collection Date\nMangrove,\"0,0\",2024-01-15\n"

	_, err := intake.NewService(failingCreator{}).Import(context.Background(), ngo, strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
