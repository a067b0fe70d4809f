package implementation

import (
	"context"
	"testing"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/repository/specification"
	"candidate-router/pkg/database"
	"candidate-router/pkg/database/databasetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenEscalation(candidateId, messageId string) *entity.Escalation {
	return &entity.Escalation{
		CandidateId:         candidateId,
		TriggeringMessageId: messageId,
		Priority:            entity.EscalationPriorityNormal,
		Department:          "support",
		Status:              entity.EscalationStatusOpen,
		Reason:              "complaint: unfair",
		Context:             map[string]interface{}{"urgency": "medium"},
	}
}

func TestEscalationRepositoryOneOpenPerMessage(t *testing.T) {
	ctx := context.Background()
	repo := NewEscalationRepository(databasetest.NewSQLite(t))

	first := newOpenEscalation("c-1", "m-1")
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, "medium", first.Context["urgency"])

	err := repo.Create(ctx, newOpenEscalation("c-1", "m-1"))
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))

	// a different message is independent
	require.NoError(t, repo.Create(ctx, newOpenEscalation("c-1", "m-2")))

	open, err := repo.Count(ctx, specification.EscalationByMessage{CandidateID: "c-1", MessageID: "m-1"}, specification.OpenEscalations{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, open)

	ok, err := repo.Resolve(ctx, first.Id, "paid manually", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Resolve(ctx, first.Id, "again", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	resolved, err := repo.FindOne(ctx, specification.ByID{ID: first.Id})
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, entity.EscalationStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, "paid manually", *resolved.Resolution)
	assert.NotNil(t, resolved.ResolvedAt)

	// once resolved, the same message may be escalated again
	require.NoError(t, repo.Create(ctx, newOpenEscalation("c-1", "m-1")))

	all, err := repo.FindAll(ctx, specification.EscalationByCandidate{CandidateID: "c-1"}, specification.OpenEscalations{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEscalationRepositoryIdsContainingSeparatorDoNotCollide(t *testing.T) {
	ctx := context.Background()
	repo := NewEscalationRepository(databasetest.NewSQLite(t))

	require.NoError(t, repo.Create(ctx, newOpenEscalation("a:b", "c")))
	require.NoError(t, repo.Create(ctx, newOpenEscalation("a", "b:c")))

	n, err := repo.Count(ctx, specification.OpenEscalations{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
