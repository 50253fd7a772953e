package facebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	maxPageSize             = 100
	maxConversationPageSize = 50
)

type listRequest struct {
	path     string
	fields   string
	limit    int
	pageSize int
	extra    url.Values
}

// fetchPaged walks paging.next until limit items were collected or the
// remote runs out. Items that fail to decode are counted, not fatal.
func fetchPaged[T any](ctx context.Context, c *FacebookClient, req listRequest, decode func(json.RawMessage) (T, error)) (*Page[T], error) {
	page := &Page[T]{Items: []T{}}
	if req.limit <= 0 {
		return page, nil
	}

	query := url.Values{}
	for k, v := range req.extra {
		query[k] = v
	}
	query.Set("fields", req.fields)
	query.Set("limit", strconv.Itoa(min(req.limit, req.pageSize)))

	log := c.logger.WithFields(logrus.Fields{
		"path":  req.path,
		"limit": req.limit,
	})

	next := c.withToken(c.config.Endpoint(req.path), query)
	for next != "" && len(page.Items) < req.limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := c.makeRequest(ctx, http.MethodGet, next, nil, "")
		if err != nil {
			return nil, err
		}

		var envelope listEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, malformed("failed to decode list response", err)
		}

		for _, raw := range envelope.Data {
			if len(page.Items) >= req.limit {
				break
			}
			item, err := decode(raw)
			if err != nil {
				page.Skipped++
				log.WithError(err).Warn("Skipping malformed item")
				continue
			}
			page.Items = append(page.Items, item)
		}

		next = ""
		if envelope.Paging != nil && len(envelope.Data) > 0 {
			next = envelope.Paging.Next
		}
	}

	log.WithFields(logrus.Fields{
		"fetched": len(page.Items),
		"skipped": page.Skipped,
	}).Debug("Finished paginated fetch")

	return page, nil
}
