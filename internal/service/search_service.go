package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"essay-hub/internal/domain"

	"golang.org/x/sync/errgroup"
)

const (
	minSearchQuery   = 2
	userSearchLimit  = 5
	postSearchLimit  = 10
	SearchTypeAuthor = "author"
	SearchTypeTitle  = "title"
)

var quotedQuery = regexp.MustCompile(`^"(.+)"$`)

type SearchResult struct {
	Posts      []*domain.Post
	Users      []*domain.User
	SearchType string
}

type SearchService interface {
	// Search treats a "quoted" query as an author search and anything else as
	// an essay title search. viewerID may be empty.
	Search(ctx context.Context, viewerID, query string) (*SearchResult, error)
}

type searchServiceImpl struct {
	userRepo domain.UserRepository
	postRepo domain.PostRepository
}

func NewSearchService(userRepo domain.UserRepository, postRepo domain.PostRepository) SearchService {
	return &searchServiceImpl{userRepo: userRepo, postRepo: postRepo}
}

func (s *searchServiceImpl) Search(ctx context.Context, viewerID, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	result := &SearchResult{Posts: []*domain.Post{}, Users: []*domain.User{}}
	if utf8.RuneCountInString(query) < minSearchQuery {
		return result, nil
	}

	filter := domain.PostFilter{ViewerID: viewerID, Limit: postSearchLimit}
	term := query
	if m := quotedQuery.FindStringSubmatch(query); m != nil {
		term = strings.TrimSpace(m[1])
		filter.AuthorName = term
		result.SearchType = SearchTypeAuthor
	} else {
		filter.TitleSearch = term
		result.SearchType = SearchTypeTitle
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.userRepo.SearchUsers(gctx, term, userSearchLimit)
		if err != nil {
			return domain.NewInternalError("Failed to search users", err)
		}
		if users != nil {
			result.Users = users
		}
		return nil
	})
	g.Go(func() error {
		posts, err := s.postRepo.ListPosts(gctx, filter)
		if err != nil {
			return domain.NewInternalError("Failed to search posts", err)
		}
		if posts != nil {
			result.Posts = posts
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
