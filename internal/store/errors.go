package store

import (
	kberrors "github.com/knowledgeboard/knowledge-server/internal/errors"
)

// Sentinel errors. Both carry the NOT_FOUND code, so errors.Is against
// kberrors.ErrNotFound matches either.
var (
	ErrPostNotFound    = kberrors.NotFound("post not found")
	ErrCommentNotFound = kberrors.NotFound("comment not found")
)
