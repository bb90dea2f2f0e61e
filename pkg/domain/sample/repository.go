package sample

import "context"

type Repository interface {
	SaveBatch(ctx context.Context, samples []LabeledSample) error
	ListByDataset(ctx context.Context, dataset string) ([]LabeledSample, error)
	CountParsed(ctx context.Context) (parsed int64, total int64, err error)
}
