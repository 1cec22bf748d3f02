package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildThread(t *testing.T) Thread {
	t.Helper()

	th := Thread{}
	th, c1 := AddComment(th, 1, "Aruzhan", "Great methodology section")
	th, _ = AddComment(th, 2, "Bekzat", "Have you considered a larger sample?")

	var err error
	th, _, err = AddReply(th, c1.ID, 2, "Bekzat", "Agreed, very thorough")
	require.NoError(t, err)
	th, _, err = AddReply(th, c1.ID, 3, "Prof. Kim", "Thanks both")
	require.NoError(t, err)

	return th
}

func TestThreadCount(t *testing.T) {
	th := buildThread(t)

	// 2 comments + 2 replies
	assert.Equal(t, 4, th.Count())
	assert.Equal(t, 0, Thread{}.Count())
}

func TestAddComment(t *testing.T) {
	th, comment := AddComment(Thread{}, 7, "Dana", "First!")

	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, uint(7), comment.AuthorID)
	assert.Equal(t, "Dana", comment.AuthorName)
	assert.NotNil(t, comment.Replies)
	assert.Equal(t, 1, th.Count())
}

func TestEditCommentAuthorOnly(t *testing.T) {
	th := buildThread(t)
	commentID := th[0].ID

	_, err := EditComment(th, commentID, 99, "hijacked")
	assert.ErrorIs(t, err, ErrNotAuthor)

	th, err = EditComment(th, commentID, 1, "edited text")
	require.NoError(t, err)
	assert.Equal(t, "edited text", th[0].Content)
	assert.True(t, th[0].UpdatedAt.After(th[0].CreatedAt) || th[0].UpdatedAt.Equal(th[0].CreatedAt))
}

func TestEditCommentNotFound(t *testing.T) {
	th := buildThread(t)

	_, err := EditComment(th, "no-such-id", 1, "text")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	th := buildThread(t)
	withReplies := th[0].ID

	th, removed, err := DeleteComment(th, withReplies, 1, false)
	require.NoError(t, err)

	// comment + its two replies
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, th.Count())
	assert.Len(t, th, 1)
}

func TestDeleteCommentAdminOverride(t *testing.T) {
	th := buildThread(t)
	commentID := th[1].ID

	_, _, err := DeleteComment(th, commentID, 42, false)
	assert.ErrorIs(t, err, ErrNotAuthor)

	th, removed, err := DeleteComment(th, commentID, 42, true)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 3, th.Count())
}

func TestReplyLifecycle(t *testing.T) {
	th, c := AddComment(Thread{}, 1, "Aruzhan", "question")

	th, reply, err := AddReply(th, c.ID, 2, "Bekzat", "answer")
	require.NoError(t, err)
	assert.Equal(t, 2, th.Count())

	_, err = EditReply(th, c.ID, reply.ID, 3, "nope")
	assert.ErrorIs(t, err, ErrNotAuthor)

	th, err = EditReply(th, c.ID, reply.ID, 2, "better answer")
	require.NoError(t, err)
	assert.Equal(t, "better answer", th[0].Replies[0].Content)

	_, err = DeleteReply(th, c.ID, "missing", 2, false)
	assert.ErrorIs(t, err, ErrReplyNotFound)

	th, err = DeleteReply(th, c.ID, reply.ID, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 1, th.Count())
}

func TestReplyToMissingComment(t *testing.T) {
	_, _, err := AddReply(Thread{}, "missing", 1, "Dana", "hello")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestJSONRoundTrip(t *testing.T) {
	th := buildThread(t)

	encoded, err := th.JSON()
	require.NoError(t, err)

	decoded, err := Parse(encoded)
	require.NoError(t, err)

	assert.Equal(t, th.Count(), decoded.Count())
	assert.Equal(t, th[0].ID, decoded[0].ID)
	assert.Len(t, decoded[0].Replies, 2)
}

func TestParseEmptyColumn(t *testing.T) {
	th, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, th)
	assert.Equal(t, 0, th.Count())
}

// Count must stay consistent through any mix of operations.
func TestCountInvariantAcrossOperations(t *testing.T) {
	th := Thread{}

	th, c1 := AddComment(th, 1, "A", "one")
	th, c2 := AddComment(th, 2, "B", "two")
	assert.Equal(t, 2, th.Count())

	var err error
	th, _, err = AddReply(th, c1.ID, 2, "B", "r1")
	require.NoError(t, err)
	th, _, err = AddReply(th, c1.ID, 3, "C", "r2")
	require.NoError(t, err)
	th, r3, err := AddReply(th, c2.ID, 1, "A", "r3")
	require.NoError(t, err)
	assert.Equal(t, 5, th.Count())

	th, err = EditComment(th, c2.ID, 2, "two edited")
	require.NoError(t, err)
	assert.Equal(t, 5, th.Count())

	th, err = DeleteReply(th, c2.ID, r3.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 4, th.Count())

	th, removed, err := DeleteComment(th, c1.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, th.Count())
}
