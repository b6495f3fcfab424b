package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ClusteringMetrics are the quality scores of one clustering model. A score
// the backend could not compute arrives as null.
type ClusteringMetrics struct {
	Silhouette       *float64 `json:"silhouette_score"`
	DaviesBouldin    *float64 `json:"davies_bouldin_score"`
	CalinskiHarabasz *float64 `json:"calinski_harabasz_score"`
	Note             string   `json:"note,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// ClusteringModel is one model's run in a clustering comparison. Per-listener
// labels and centers are not decoded.
type ClusteringModel struct {
	Name          string            `json:"name"`
	Inertia       *float64          `json:"inertia,omitempty"`
	BIC           *float64          `json:"bic,omitempty"`
	AIC           *float64          `json:"aic,omitempty"`
	ClustersFound *int              `json:"n_clusters_found,omitempty"`
	NoisePoints   *int              `json:"n_noise_points,omitempty"`
	Metrics       ClusteringMetrics `json:"metrics"`
}

// BestClusteringModel is the backend's pick among the compared models.
type BestClusteringModel struct {
	Model          string  `json:"best_model"`
	Silhouette     float64 `json:"best_silhouette_score"`
	Recommendation string  `json:"recommendation"`
}

// ClusteringComparison is the payload of the clustering comparison endpoint.
// Results keep the order the backend emitted the models in.
type ClusteringComparison struct {
	ArtistID       string                                          `json:"artist_id"`
	ModelsCompared []string                                        `json:"models_compared"`
	Results        *orderedmap.OrderedMap[string, ClusteringModel] `json:"results"`
	BestModel      BestClusteringModel                             `json:"best_model"`
}

// ChurnTrainingMetrics are the holdout scores of a churn model fit.
type ChurnTrainingMetrics struct {
	TrainAccuracy float64 `json:"train_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy"`
	CVMean        float64 `json:"cv_mean_accuracy"`
	CVStd         float64 `json:"cv_std_accuracy"`
	ROCAUC        float64 `json:"roc_auc_score"`
}

// ChurnTraining is the payload of the churn train endpoint.
type ChurnTraining struct {
	ArtistID        string `json:"artist_id"`
	ModelReady      bool   `json:"model_ready"`
	TrainingResults struct {
		Complete bool                 `json:"training_complete"`
		Metrics  ChurnTrainingMetrics `json:"metrics"`
		Dataset  struct {
			TotalListeners   int    `json:"total_listeners"`
			ChurnedListeners int    `json:"churned_listeners"`
			ChurnRate        string `json:"churn_rate"`
		} `json:"dataset_info"`
	} `json:"training_results"`
}

// EmotionLabels are the emotion names in display order.
var EmotionLabels = []string{"joy", "love", "surprise", "sadness", "fear", "anger"}

// EmotionScore is one emotion's or sentiment's tally across analyzed
// comments. Percentage arrives preformatted and is not trusted for math.
type EmotionScore struct {
	AverageIntensity float64 `json:"average_intensity"`
	Count            int     `json:"count"`
	Percentage       string  `json:"percentage,omitempty"`
}

// DominantEmotion is the most frequent emotion.
type DominantEmotion struct {
	Emotion    string  `json:"emotion"`
	Percentage string  `json:"percentage"`
	Intensity  float64 `json:"intensity"`
}

// EmotionInsight is a suggestion derived from the emotion mix.
type EmotionInsight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// EmotionReport is the body of an emotion analysis.
type EmotionReport struct {
	Complete      bool                    `json:"analysis_complete"`
	TotalComments int                     `json:"total_comments_analyzed"`
	Distribution  map[string]EmotionScore `json:"emotion_distribution"`
	Vader         map[string]EmotionScore `json:"vader_sentiment"`
	Dominant      DominantEmotion         `json:"dominant_emotion"`
	Insights      []EmotionInsight        `json:"insights"`
}

// EmotionAnalysis is the payload of the emotion analysis endpoint.
type EmotionAnalysis struct {
	ArtistID string        `json:"artist_id"`
	Analysis EmotionReport `json:"emotion_analysis"`
}
