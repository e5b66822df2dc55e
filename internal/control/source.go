package control

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source feeds operator commands into a Plane until ctx is done.
type Source interface {
	Name() string
	Listen(ctx context.Context, p *Plane) error
}

// Serve runs every source until ctx is done or one of them fails.
func Serve(ctx context.Context, p *Plane, log *zap.SugaredLogger, sources ...Source) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			log.Infof("🎛️  Control source %s listening", src.Name())
			return src.Listen(ctx, p)
		})
	}
	return g.Wait()
}
