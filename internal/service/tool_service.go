package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/util"
	"github.com/choxos/robass-backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	toolCatalogCacheKey = "robass:tools:catalog"
	toolCatalogCacheTTL = time.Hour
)

// ToolService serves the read-only tool catalog. The catalog is seeded at
// startup and never mutated at runtime, so it is cached aggressively.
type ToolService struct {
	ToolRepo *repository.ToolRepository
	Redis    *redis.Client
}

func NewToolService(toolRepo *repository.ToolRepository, rdb *redis.Client) *ToolService {
	return &ToolService{
		ToolRepo: toolRepo,
		Redis:    rdb,
	}
}

func (s *ToolService) ListTools(ctx context.Context) ([]model.AssessmentTool, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, toolCatalogCacheKey).Bytes()
		if err == nil {
			var tools []model.AssessmentTool
			if err := json.Unmarshal(cached, &tools); err == nil {
				return tools, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("Tool catalog cache read failed", zap.Error(err))
		}
	}

	tools, err := s.ToolRepo.ListActive()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(tools); err == nil {
			if err := s.Redis.Set(ctx, toolCatalogCacheKey, data, toolCatalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("Tool catalog cache write failed", zap.Error(err))
			}
		}
	}

	return tools, nil
}

func (s *ToolService) GetTool(id uint) (*model.AssessmentTool, error) {
	tool, err := s.ToolRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrToolNotFound
	}
	return tool, err
}

func (s *ToolService) GetToolByName(name string) (*model.AssessmentTool, error) {
	tool, err := s.ToolRepo.FindByName(name)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrToolNotFound
	}
	return tool, err
}
