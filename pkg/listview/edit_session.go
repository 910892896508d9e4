package listview

import (
	"context"
	"io"

	"taskboard.dev/taskboard/pkg/api"
	"taskboard.dev/taskboard/pkg/client"
)

// AttachmentAPI is the slice of the dispatcher an edit session needs.
// *client.Client satisfies it.
type AttachmentAPI interface {
	UploadAttachment(ctx context.Context, taskID, filename string, file io.Reader) client.Result[api.Attachment]
	DeleteAttachment(ctx context.Context, taskID, attachmentID string) client.Result[client.Ack]
}

// EditSession buffers attachment changes made while editing one task.
// Files are uploaded to the server as soon as they are added, but only
// become part of the task's committed attachment set when the session
// is committed; cancelling issues compensating deletes for them.
// Existing attachments marked for deletion are only removed on commit.
type EditSession struct {
	api    AttachmentAPI
	taskID string

	existing       []api.Attachment
	pendingAdds    []api.Attachment
	pendingDeletes map[string]struct{}
	closed         bool
}

// NewEditSession starts an edit session over a task's current
// attachments.
func NewEditSession(attachmentAPI AttachmentAPI, taskID string, existing []api.Attachment) *EditSession {
	return &EditSession{
		api:            attachmentAPI,
		taskID:         taskID,
		existing:       append([]api.Attachment(nil), existing...),
		pendingDeletes: make(map[string]struct{}),
	}
}

// AddFile uploads a file now and records it as pending until the
// session settles.
func (s *EditSession) AddFile(ctx context.Context, filename string, file io.Reader) client.Result[api.Attachment] {
	result := s.api.UploadAttachment(ctx, s.taskID, filename, file)
	if result.Success {
		s.pendingAdds = append(s.pendingAdds, result.Data)
	}
	return result
}

// MarkDelete flags an existing attachment for removal on commit.
// A pending add is deleted immediately instead, since it is not part
// of the committed set yet.
func (s *EditSession) MarkDelete(ctx context.Context, attachmentID string) client.Result[client.Ack] {
	for i, added := range s.pendingAdds {
		if added.ID == attachmentID {
			result := s.api.DeleteAttachment(ctx, s.taskID, attachmentID)
			if result.Success {
				s.pendingAdds = append(s.pendingAdds[:i], s.pendingAdds[i+1:]...)
			}
			return result
		}
	}

	s.pendingDeletes[attachmentID] = struct{}{}
	return client.Result[client.Ack]{Success: true}
}

// UnmarkDelete clears a pending deletion flag.
func (s *EditSession) UnmarkDelete(attachmentID string) {
	delete(s.pendingDeletes, attachmentID)
}

// Attachments returns the set as it would look if the session were
// committed now: existing minus marked-for-deletion, plus pending
// adds.
func (s *EditSession) Attachments() []api.Attachment {
	visible := make([]api.Attachment, 0, len(s.existing)+len(s.pendingAdds))
	for _, a := range s.existing {
		if _, marked := s.pendingDeletes[a.ID]; marked {
			continue
		}
		visible = append(visible, a)
	}
	return append(visible, s.pendingAdds...)
}

// PendingDeletes reports which existing attachments are flagged for
// removal.
func (s *EditSession) PendingDeletes() []string {
	ids := make([]string, 0, len(s.pendingDeletes))
	for id := range s.pendingDeletes {
		ids = append(ids, id)
	}
	return ids
}

// Commit applies the marked deletions and returns the final
// attachment set. A deletion that fails stays in the set; its error
// message is returned while the rest are still applied.
func (s *EditSession) Commit(ctx context.Context) ([]api.Attachment, []string) {
	if s.closed {
		return s.Attachments(), nil
	}
	s.closed = true

	var failures []string
	remaining := make([]api.Attachment, 0, len(s.existing))
	for _, a := range s.existing {
		if _, marked := s.pendingDeletes[a.ID]; !marked {
			remaining = append(remaining, a)
			continue
		}
		if result := s.api.DeleteAttachment(ctx, s.taskID, a.ID); !result.Success {
			failures = append(failures, result.Message)
			remaining = append(remaining, a)
		}
	}

	s.existing = append(remaining, s.pendingAdds...)
	s.pendingAdds = nil
	s.pendingDeletes = make(map[string]struct{})
	return s.existing, failures
}

// Cancel reverses the session: every already-uploaded pending add is
// deleted from the server, and attachments marked for deletion are
// restored untouched. The returned set is the one the session started
// from.
func (s *EditSession) Cancel(ctx context.Context) ([]api.Attachment, []string) {
	if s.closed {
		return s.existing, nil
	}
	s.closed = true

	var failures []string
	for _, added := range s.pendingAdds {
		if result := s.api.DeleteAttachment(ctx, s.taskID, added.ID); !result.Success {
			failures = append(failures, result.Message)
		}
	}

	s.pendingAdds = nil
	s.pendingDeletes = make(map[string]struct{})
	return s.existing, failures
}
