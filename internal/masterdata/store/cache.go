package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"auditadmin/internal/masterdata"
	"auditadmin/internal/masterdata/models"
	id "auditadmin/pkg/domain"
)

// Cached wraps a Store with a redis read-through cache for the hot dropdown
// listing (no search, no parent filter, active only). Mutations bump a
// per-group generation counter instead of scanning keys, so stale entries
// simply stop being addressed and age out via TTL.
//
// Deletion-validation results are never cached; References always hits the
// underlying store.
type Cached struct {
	Store
	redis  *redis.Client
	desc   masterdata.Descriptor
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(inner Store, client *redis.Client, desc masterdata.Descriptor, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{Store: inner, redis: client, desc: desc, ttl: ttl, logger: logger}
}

type cachedPage struct {
	Records []*models.Record `json:"records"`
	Total   int              `json:"total"`
}

func (c *Cached) List(ctx context.Context, groupID id.GroupID, filter ListFilter) ([]*models.Record, int, error) {
	if !c.cacheable(filter) {
		return c.Store.List(ctx, groupID, filter)
	}

	key, ok := c.listKey(ctx, groupID, filter)
	if ok {
		if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
			var page cachedPage
			if err := json.Unmarshal(raw, &page); err == nil {
				return page.Records, page.Total, nil
			}
		}
	}

	records, total, err := c.Store.List(ctx, groupID, filter)
	if err != nil {
		return nil, 0, err
	}
	if ok {
		if raw, err := json.Marshal(cachedPage{Records: records, Total: total}); err == nil {
			if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.WarnContext(ctx, "cache write failed",
					"table", c.desc.Table,
					"error", err,
				)
			}
		}
	}
	return records, total, nil
}

func (c *Cached) Create(ctx context.Context, record *models.Record) error {
	if err := c.Store.Create(ctx, record); err != nil {
		return err
	}
	c.invalidate(ctx, record.GroupID)
	return nil
}

func (c *Cached) Update(ctx context.Context, record *models.Record) error {
	if err := c.Store.Update(ctx, record); err != nil {
		return err
	}
	c.invalidate(ctx, record.GroupID)
	return nil
}

func (c *Cached) Delete(ctx context.Context, groupID id.GroupID, recordID id.RecordID, now time.Time) (bool, error) {
	removed, err := c.Store.Delete(ctx, groupID, recordID, now)
	if removed {
		c.invalidate(ctx, groupID)
	}
	return removed, err
}

func (c *Cached) Execute(ctx context.Context, groupID id.GroupID, recordID id.RecordID,
	validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error) {
	rec, err := c.Store.Execute(ctx, groupID, recordID, validate, mutate)
	if err == nil {
		c.invalidate(ctx, groupID)
	}
	return rec, err
}

func (c *Cached) cacheable(filter ListFilter) bool {
	return filter.Search == "" && filter.ParentID == nil && !filter.IncludeInactive
}

func (c *Cached) genKey(groupID id.GroupID) string {
	return fmt.Sprintf("md:gen:%s:%s", c.desc.Table, groupID)
}

// listKey resolves the current generation; a redis outage here degrades to
// the underlying store rather than failing the request.
func (c *Cached) listKey(ctx context.Context, groupID id.GroupID, filter ListFilter) (string, bool) {
	gen, err := c.redis.Get(ctx, c.genKey(groupID)).Int64()
	if err != nil && err != redis.Nil {
		return "", false
	}
	return fmt.Sprintf("md:list:%s:%s:g%d:p%d:s%d",
		c.desc.Table, groupID, gen, filter.Page.Page, filter.Page.Size), true
}

func (c *Cached) invalidate(ctx context.Context, groupID id.GroupID) {
	if err := c.redis.Incr(ctx, c.genKey(groupID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed",
			"table", c.desc.Table,
			"error", err,
		)
	}
}
