package client

import (
	"context"
	"fmt"
	"strconv"
)

// SubmissionService wraps the /submissions endpoints.
type SubmissionService struct {
	client *Client
}

func NewSubmissionService(c *Client) *SubmissionService {
	return &SubmissionService{client: c}
}

// Submit completes an assignment: multipart form with the assignment id,
// optional notes and the ordered file parts. The assignment must already be
// InProgress; moving it there is a separate explicit action, never implied
// here.
func (s *SubmissionService) Submit(ctx context.Context, assignmentID uint, notes string, files []Upload) (*Submission, error) {
	fields := map[string]string{
		"taskAssignmentId": strconv.FormatUint(uint64(assignmentID), 10),
	}
	if notes != "" {
		fields["notes"] = notes
	}

	var submission Submission
	if err := s.client.PostMultipart(ctx, "/api/submissions", fields, "files", files, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// Submission fetches one submission record.
func (s *SubmissionService) Submission(ctx context.Context, submissionID uint) (*Submission, error) {
	var submission Submission
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/submissions/%d", submissionID), &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// DownloadFile fetches a file's binary content and its declared content
// type.
func (s *SubmissionService) DownloadFile(ctx context.Context, fileID int64) ([]byte, string, error) {
	return s.client.GetBinary(ctx, fmt.Sprintf("/api/submissions/files/%d", fileID))
}
