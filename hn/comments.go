package hn

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/mseshachalam/vector/app"
)

type queued struct {
	id    int
	depth int
}

// Comments walks a story's comment tree breadth first, seeded with the
// story's direct child ids at depth 0, and returns a flat depth-annotated
// list in traversal order. Each batch of up to Batch ids is fetched
// concurrently and joined before the traversal advances, so the output order
// depends only on the source data, never on fetch completion order.
//
// Every attempted id counts against maxTotal, including dead, deleted and
// missing comments; those are not emitted and their children are not
// followed. A transport failure on one id is treated like a missing item and
// never aborts its siblings.
func (c *Client) Comments(ctx context.Context, rootIDs []int, maxTotal int) ([]*app.Comment, error) {
	if maxTotal <= 0 {
		return nil, nil
	}

	queue := make([]queued, 0, len(rootIDs))
	seen := make(map[int]bool, len(rootIDs))
	for _, id := range rootIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, queued{id: id, depth: 0})
	}

	batchSize := c.Batch
	if batchSize <= 0 {
		batchSize = app.DefaultFetchBatch
	}

	var out []*app.Comment
	attempts := 0
	for len(queue) > 0 && attempts < maxTotal {
		n := batchSize
		if left := maxTotal - attempts; n > left {
			n = left
		}
		if n > len(queue) {
			n = len(queue)
		}
		batch := queue[:n]
		queue = queue[n:]

		// Fan out one goroutine per slot; each writes only its own index.
		results := make([]*app.Comment, n)
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				node, err := c.Item(ctx, batch[i].id)
				if err != nil {
					if !errors.Is(err, ErrNotFound) {
						log.Println(err) // warning
					}
					return
				}
				cm, ok := node.(*app.Comment)
				if !ok {
					return
				}
				cm.Depth = batch[i].depth
				results[i] = cm
			}(i)
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return out, err
		}

		for i, cm := range results {
			attempts++
			if cm == nil || cm.Dead {
				continue
			}
			out = append(out, cm)
			for _, kid := range cm.Kids {
				if seen[kid] {
					continue
				}
				seen[kid] = true
				queue = append(queue, queued{id: kid, depth: batch[i].depth + 1})
			}
			if len(out) >= maxTotal {
				return out, nil
			}
		}
	}

	return out, nil
}
