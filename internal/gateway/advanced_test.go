package gateway

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
)

// churnServer answers predict with 400 until train has been called once.
type churnServer struct {
	mu       sync.Mutex
	trained  bool
	trainErr int
	log      []string
}

func (s *churnServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, r.Method+" "+r.URL.Path)
	switch r.URL.Path {
	case "/api/advanced/churn-prediction/a1/train":
		if s.trainErr != 0 {
			writeJSON(w, s.trainErr, map[string]string{"error": "Insufficient churn data"})
			return
		}
		s.trained = true
		io.WriteString(w, `{"success":true,"artist_id":"a1","model_ready":true,
			"training_results":{"training_complete":true,
			"metrics":{"train_accuracy":0.91,"test_accuracy":0.87,"cv_mean_accuracy":0.86,"cv_std_accuracy":0.02,"roc_auc_score":0.93},
			"dataset_info":{"total_listeners":120,"churned_listeners":18,"churn_rate":"15.0%"}}}`)
	case "/api/advanced/churn-prediction/a1/predict":
		if !s.trained {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Model not trained", "message": "Call /train endpoint first"})
			return
		}
		io.WriteString(w, `{"artist_id":"a1","predictions":{"risk_segments":{"high_risk":{"count":3},"medium_risk":{"count":5},"low_risk":{"count":12}}}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *churnServer) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

func TestPredictChurnTrainsWhenUntrained(t *testing.T) {
	srv := &churnServer{}
	c, _ := newTestClient(t, srv)

	pred, training, err := PredictChurn(context.Background(), c, "a1", false)
	if err != nil {
		t.Fatalf("PredictChurn: %v", err)
	}
	if training == nil || !training.ModelReady || training.TrainingResults.Metrics.ROCAUC != 0.93 {
		t.Errorf("training = %+v", training)
	}
	if pred.Predictions.RiskSegments.Low.Count != 12 {
		t.Errorf("prediction = %+v", pred)
	}
	want := []string{
		"GET /api/advanced/churn-prediction/a1/predict",
		"POST /api/advanced/churn-prediction/a1/train",
		"GET /api/advanced/churn-prediction/a1/predict",
	}
	got := srv.calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}

	// A trained model is used as is.
	_, training, err = PredictChurn(context.Background(), c, "a1", false)
	if err != nil || training != nil {
		t.Errorf("second run: training = %+v, err = %v", training, err)
	}
	if n := len(srv.calls()); n != 4 {
		t.Errorf("calls = %d, want 4", n)
	}
}

func TestPredictChurnRetrainAlwaysTrains(t *testing.T) {
	srv := &churnServer{trained: true}
	c, _ := newTestClient(t, srv)

	_, training, err := PredictChurn(context.Background(), c, "a1", true)
	if err != nil || training == nil {
		t.Fatalf("training = %+v, err = %v", training, err)
	}
	if got := srv.calls()[0]; got != "POST /api/advanced/churn-prediction/a1/train" {
		t.Errorf("first call = %q", got)
	}
}

func TestPredictChurnTrainingFailure(t *testing.T) {
	srv := &churnServer{trainErr: http.StatusBadRequest}
	c, _ := newTestClient(t, srv)

	pred, training, err := PredictChurn(context.Background(), c, "a1", false)
	if err == nil || pred != nil || training != nil {
		t.Fatalf("pred = %+v, training = %+v, err = %v", pred, training, err)
	}
	if got := Message(err); got != "Insufficient churn data" {
		t.Errorf("Message = %q", got)
	}
	if IsUntrainedModel(err) {
		t.Error("a training failure is not an untrained-model answer")
	}
	if n := len(srv.calls()); n != 2 {
		t.Errorf("train is a POST and must not be retried, calls = %d", n)
	}
}

func TestClusteringComparisonKeepsModelOrder(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/advanced/clustering-comparison/a1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"success":true,"artist_id":"a1","models_compared":["kmeans","gmm","dbscan"],
			"results":{
				"kmeans":{"name":"K-Means (Current)","labels":[0,1,2],"inertia":12.5,"metrics":{"silhouette_score":0.52,"davies_bouldin_score":0.8,"calinski_harabasz_score":140.2}},
				"gmm":{"name":"Gaussian Mixture Model","bic":310.4,"aic":290.1,"metrics":{"silhouette_score":0.47,"davies_bouldin_score":0.9,"calinski_harabasz_score":null}},
				"dbscan":{"name":"DBSCAN (Density-Based)","n_clusters_found":1,"n_noise_points":4,"metrics":{"silhouette_score":null,"davies_bouldin_score":null,"calinski_harabasz_score":null,"note":"Insufficient clusters for metric calculation"}}
			},
			"best_model":{"best_model":"kmeans","best_silhouette_score":0.52,"recommendation":"K-Means performs well"}}`)
	}))

	res, err := c.ClusteringComparison(context.Background(), "a1")
	if err != nil {
		t.Fatalf("ClusteringComparison: %v", err)
	}
	var order []string
	for p := res.Results.Oldest(); p != nil; p = p.Next() {
		order = append(order, p.Key)
	}
	if len(order) != 3 || order[0] != "kmeans" || order[2] != "dbscan" {
		t.Errorf("order = %v", order)
	}
	gmm, _ := res.Results.Get("gmm")
	if gmm.Metrics.CalinskiHarabasz != nil || gmm.BIC == nil || *gmm.BIC != 310.4 {
		t.Errorf("gmm = %+v", gmm)
	}
	dbscan, _ := res.Results.Get("dbscan")
	if dbscan.Metrics.Silhouette != nil || dbscan.Metrics.Note == "" || *dbscan.ClustersFound != 1 {
		t.Errorf("dbscan = %+v", dbscan)
	}
	if res.BestModel.Model != "kmeans" {
		t.Errorf("best = %+v", res.BestModel)
	}
}

func TestEmotionAnalysisRetriesWhileModelLoads(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/advanced/emotion-analysis/a1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Emotion model not loaded"})
			return
		}
		io.WriteString(w, `{"success":true,"artist_id":"a1","emotion_analysis":{"analysis_complete":true,"total_comments_analyzed":40,
			"emotion_distribution":{"joy":{"average_intensity":0.8,"count":22,"percentage":"55.0%"},"anger":{"average_intensity":0.4,"count":2,"percentage":"5.0%"}},
			"vader_sentiment":{"positive":{"count":30,"percentage":"75.0%"}},
			"dominant_emotion":{"emotion":"joy","percentage":"55.0%","intensity":0.8},
			"insights":[{"type":"positive","message":"Fans love it","action":"Keep going"}]}}`)
	}))

	res, err := c.EmotionAnalysis(context.Background(), "a1")
	if err != nil {
		t.Fatalf("EmotionAnalysis: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	rep := res.Analysis
	if rep.TotalComments != 40 || rep.Distribution["joy"].Count != 22 || rep.Dominant.Emotion != "joy" {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.Insights) != 1 || rep.Vader["positive"].Count != 30 {
		t.Errorf("report = %+v", rep)
	}
}

func TestAdvancedFallbacks(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err := c.ClusteringComparison(context.Background(), "ghost")
	if got := Message(err); got != "Clustering comparison failed." {
		t.Errorf("Message = %q", got)
	}
	_, err = c.EmotionAnalysis(context.Background(), "ghost")
	if got := Message(err); got != "Emotion analysis failed." {
		t.Errorf("Message = %q", got)
	}
	_, err = c.TrainChurn(context.Background(), "ghost")
	if got := Message(err); got != "Churn model training failed." {
		t.Errorf("Message = %q", got)
	}
}
