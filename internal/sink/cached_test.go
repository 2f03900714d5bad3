package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-authgate/stravaexport/internal/cache"
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/mocks"
	"github.com/go-authgate/stravaexport/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCachedSink_LoadHitsCacheAfterFirstRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockSink(ctrl)
	ctx := context.Background()

	next.EXPECT().
		Load(gomock.Any(), "1").
		Return(&models.CSVFile{UserID: "1", CSVData: "cached"}, nil).
		Times(1)

	s := NewCachedSink(next, cache.NewMemoryCache[models.CSVFile](), time.Minute)

	for i := 0; i < 3; i++ {
		file, err := s.Load(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "cached", file.CSVData)
	}
}

func TestCachedSink_SaveInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockSink(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		next.EXPECT().Load(gomock.Any(), "1").Return(&models.CSVFile{UserID: "1", CSVData: "old"}, nil),
		next.EXPECT().Save(gomock.Any(), "1", "new").Return(nil),
		next.EXPECT().Load(gomock.Any(), "1").Return(&models.CSVFile{UserID: "1", CSVData: "new"}, nil),
	)

	s := NewCachedSink(next, cache.NewMemoryCache[models.CSVFile](), time.Minute)

	file, err := s.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "old", file.CSVData)

	require.NoError(t, s.Save(ctx, "1", "new"))

	file, err = s.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "new", file.CSVData)
}

func TestCachedSink_NotFoundIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockSink(ctrl)
	ctx := context.Background()

	next.EXPECT().Load(gomock.Any(), "ghost").Return(nil, core.ErrNotFound).Times(2)

	s := NewCachedSink(next, cache.NewMemoryCache[models.CSVFile](), time.Minute)

	for i := 0; i < 2; i++ {
		_, err := s.Load(ctx, "ghost")
		assert.ErrorIs(t, err, core.ErrNotFound)
	}
}

func TestCachedSink_SaveErrorKeepsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockSink(ctrl)
	ctx := context.Background()

	boom := errors.New("disk full")
	next.EXPECT().Load(gomock.Any(), "1").Return(&models.CSVFile{UserID: "1", CSVData: "old"}, nil).Times(1)
	next.EXPECT().Save(gomock.Any(), "1", "new").Return(boom)
	next.EXPECT().Name().Return(BackendFile)

	s := NewCachedSink(next, cache.NewMemoryCache[models.CSVFile](), time.Minute)

	_, err := s.Load(ctx, "1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Save(ctx, "1", "new"), boom)

	file, err := s.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "old", file.CSVData)
	assert.Equal(t, BackendFile, s.Name())
}
