package pre

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/drand/pre/common/log"
	"github.com/drand/pre/crypto"
)

// ReEncryptBatch re-encrypts the given ciphertexts with the same
// re-encryption key, using up to workers goroutines (GOMAXPROCS when
// workers <= 0). The result at index i corresponds to cts[i] and is nil if that
// ciphertext failed. All failures are returned together. Cancelling ctx stops
// scheduling new ciphertexts.
func ReEncryptBatch(ctx context.Context, cts []CiphertextInput, rk PointInput, sch *crypto.Scheme, workers int) ([]*ReEncryptedCiphertext, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	rkp, err := decodePoint(rk, sch.G2)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cts) {
		workers = len(cts)
	}
	l := log.FromContextOrDefault(ctx)

	out := make([]*ReEncryptedCiphertext, len(cts))
	jobs := make(chan int)
	var mu sync.Mutex
	var errs *multierror.Error
	failed := 0
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := reEncrypt(cts[i], rkp, sch)
				if err != nil {
					mu.Lock()
					errs = multierror.Append(errs, fmt.Errorf("ciphertext %d: %w", i, err))
					failed++
					mu.Unlock()
					continue
				}
				out[i] = res
			}
		}()
	}

	scheduled := 0
feed:
	for i := range cts {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
			scheduled++
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil && scheduled < len(cts) {
		errs = multierror.Append(errs, err)
	}
	l.Debugw("re-encrypted batch", "total", len(cts), "scheduled", scheduled, "failed", failed)
	return out, errs.ErrorOrNil()
}
