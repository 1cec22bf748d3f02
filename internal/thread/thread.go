// Package thread implements the comment/reply structure embedded in a
// project document. Depth is fixed at two levels: comments and replies.
// All operations are pure; callers persist the result with a
// read-modify-write of the project's comments column.
package thread

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrReplyNotFound   = errors.New("reply not found")
	ErrNotAuthor       = errors.New("not the author")
)

type Reply struct {
	ID         string    `json:"id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Comment struct {
	ID         string    `json:"id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Replies    []Reply   `json:"replies"`
}

type Thread []Comment

// Parse decodes the stored comments column. A null or empty column is an
// empty thread.
func Parse(data datatypes.JSON) (Thread, error) {
	if len(data) == 0 {
		return Thread{}, nil
	}

	var t Thread
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return t, nil
}

// JSON encodes the thread for storage.
func (t Thread) JSON() (datatypes.JSON, error) {
	if t == nil {
		t = Thread{}
	}
	return json.Marshal(t)
}

// Count returns the total number of comments plus replies. The project's
// comment_count column is always rewritten from this value.
func (t Thread) Count() int {
	total := 0
	for _, c := range t {
		total += 1 + len(c.Replies)
	}
	return total
}

func (t Thread) find(commentID string) int {
	for i := range t {
		if t[i].ID == commentID {
			return i
		}
	}
	return -1
}

func (c *Comment) findReply(replyID string) int {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			return i
		}
	}
	return -1
}

func AddComment(t Thread, authorID uint, authorName, content string) (Thread, Comment) {
	now := time.Now().UTC()
	comment := Comment{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
		Replies:    []Reply{},
	}
	return append(t, comment), comment
}

func EditComment(t Thread, commentID string, callerID uint, content string) (Thread, error) {
	i := t.find(commentID)
	if i < 0 {
		return t, ErrCommentNotFound
	}
	if t[i].AuthorID != callerID {
		return t, ErrNotAuthor
	}

	t[i].Content = content
	t[i].UpdatedAt = time.Now().UTC()
	return t, nil
}

// DeleteComment removes a top-level comment together with all its replies
// and returns how many entries were removed (1 + reply count).
func DeleteComment(t Thread, commentID string, callerID uint, isAdmin bool) (Thread, int, error) {
	i := t.find(commentID)
	if i < 0 {
		return t, 0, ErrCommentNotFound
	}
	if t[i].AuthorID != callerID && !isAdmin {
		return t, 0, ErrNotAuthor
	}

	removed := 1 + len(t[i].Replies)
	return append(t[:i], t[i+1:]...), removed, nil
}

func AddReply(t Thread, commentID string, authorID uint, authorName, content string) (Thread, Reply, error) {
	i := t.find(commentID)
	if i < 0 {
		return t, Reply{}, ErrCommentNotFound
	}

	now := time.Now().UTC()
	reply := Reply{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t[i].Replies = append(t[i].Replies, reply)
	return t, reply, nil
}

func EditReply(t Thread, commentID, replyID string, callerID uint, content string) (Thread, error) {
	i := t.find(commentID)
	if i < 0 {
		return t, ErrCommentNotFound
	}

	j := t[i].findReply(replyID)
	if j < 0 {
		return t, ErrReplyNotFound
	}
	if t[i].Replies[j].AuthorID != callerID {
		return t, ErrNotAuthor
	}

	t[i].Replies[j].Content = content
	t[i].Replies[j].UpdatedAt = time.Now().UTC()
	return t, nil
}

func DeleteReply(t Thread, commentID, replyID string, callerID uint, isAdmin bool) (Thread, error) {
	i := t.find(commentID)
	if i < 0 {
		return t, ErrCommentNotFound
	}

	j := t[i].findReply(replyID)
	if j < 0 {
		return t, ErrReplyNotFound
	}
	if t[i].Replies[j].AuthorID != callerID && !isAdmin {
		return t, ErrNotAuthor
	}

	t[i].Replies = append(t[i].Replies[:j], t[i].Replies[j+1:]...)
	return t, nil
}
