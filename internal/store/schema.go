package store

// Table names in the backing sheet store.
const (
	TablePosts     = "Posts"
	TableTags      = "Tags"
	TablePostTags  = "PostTags"
	TableComments  = "Comments"
	TableLikes     = "Likes"
	TableReactions = "CommentReactions"
)

// Posts columns.
const (
	postColID = iota
	postColCategory
	postColTitle
	postColContent
	postColTagsCache
	postColPostedBy
	postColPostedAt
	postColUpdatedAt
	postColLikesCount
	postColThumbnailURL
	postColStatus
	postColMetadata
)

// Tags columns.
const (
	tagColID = iota
	tagColName
	tagColSlug
	tagColColor
	tagColAliases
	tagColCreatedAt
)

// PostTags columns.
const (
	postTagColPostID = iota
	postTagColTagID
	postTagColCreatedAt
)

// Comments columns.
const (
	commentColID = iota
	commentColPostID
	commentColAuthor
	commentColContent
	commentColPostedAt
)

// Likes columns.
const (
	likeColClientID = iota
	likeColPostID
	likeColLikedAt
)

// CommentReactions columns.
const (
	reactionColCommentID = iota
	reactionColEmoji
	reactionColClientID
	reactionColReactedAt
)

// Table pairs a table name with its header row.
type Table struct {
	Name   string
	Header []string
}

// Schema lists every table with its fixed column order.
var Schema = []Table{
	{TablePosts, []string{
		"id", "category", "title", "content", "tagsCache", "postedBy",
		"postedAt", "updatedAt", "likesCount", "thumbnailUrl", "status", "metadataJson",
	}},
	{TableTags, []string{"id", "name", "slug", "color", "aliases", "createdAt"}},
	{TablePostTags, []string{"postId", "tagId", "createdAt"}},
	{TableComments, []string{"id", "postId", "author", "content", "postedAt"}},
	{TableLikes, []string{"clientId", "postId", "likedAt"}},
	{TableReactions, []string{"commentId", "emoji", "clientId", "reactedAt"}},
}
