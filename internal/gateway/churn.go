package gateway

import (
	"context"

	"github.com/abelbrown/growthdesk/internal/model"
)

// ChurnModel is the churn half of the backend. *Client satisfies it.
type ChurnModel interface {
	ChurnPrediction(ctx context.Context, artistID string) (*model.ChurnPrediction, error)
	TrainChurn(ctx context.Context, artistID string) (*model.ChurnTraining, error)
}

// PredictChurn fetches churn risk buckets, training the model first when
// retrain is set or when the backend has no model yet. training is nil when
// no training ran. A training failure is returned as is and no prediction
// is attempted.
func PredictChurn(ctx context.Context, m ChurnModel, artistID string, retrain bool) (pred *model.ChurnPrediction, training *model.ChurnTraining, err error) {
	if !retrain {
		pred, err = m.ChurnPrediction(ctx, artistID)
		if !IsUntrainedModel(err) {
			return pred, nil, err
		}
	}
	training, err = m.TrainChurn(ctx, artistID)
	if err != nil {
		return nil, nil, err
	}
	pred, err = m.ChurnPrediction(ctx, artistID)
	if err != nil {
		return nil, training, err
	}
	return pred, training, nil
}
