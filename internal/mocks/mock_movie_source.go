package mocks

import (
	"context"

	"github.com/popcornpalace/booking-api/internal/tmdb"
	"github.com/stretchr/testify/mock"
)

type MockMovieSource struct {
	mock.Mock
}

func (m *MockMovieSource) Discover(ctx context.Context) ([]tmdb.MovieRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tmdb.MovieRef), args.Error(1)
}

func (m *MockMovieSource) GetMovieInfo(ctx context.Context, movieID int) (*tmdb.MovieInfo, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.MovieInfo), args.Error(1)
}

func (m *MockMovieSource) GetCredits(ctx context.Context, movieID int) (*tmdb.Credits, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.Credits), args.Error(1)
}

func (m *MockMovieSource) GetVideos(ctx context.Context, movieID int) (*tmdb.Videos, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.Videos), args.Error(1)
}
