package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reviewloop/reviewloop/internal/audit"
	"github.com/reviewloop/reviewloop/internal/grades"
	"github.com/reviewloop/reviewloop/internal/metrics"
)

type heatMapResponse struct {
	Scores           map[int64]grades.ParticipantScoreResult `json:"scores"`
	Assignment       grades.Assignment                       `json:"assignment"`
	Averages         []float64                               `json:"averages"`
	AvgOfAvg         float64                                 `json:"avg_of_avg"`
	ReviewScoreCount int                                     `json:"review_score_count"`
	ParticipantCount int                                     `json:"participant_count"`
}

// GET /assignments/{assignmentID}/heatmap
// Instructor/TA grading report: all participants' review scores plus summary
// statistics.
func HeatMapHandler(svc *grades.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "assignmentID")
		if !ok {
			http.Error(w, "assignmentID required", http.StatusBadRequest)
			return
		}
		if !svc.CanViewAggregateReport(actorFrom(r)) {
			metrics.AccessDenied.WithLabelValues("view_report").Inc()
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		start := time.Now()
		hm, err := svc.AssembleHeatMap(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		metrics.ObserveHeatmap(start)
		writeJSON(w, heatMapResponse{
			Scores:           hm.Participants,
			Assignment:       hm.Assignment,
			Averages:         hm.Averages(),
			AvgOfAvg:         hm.AvgOfAvg,
			ReviewScoreCount: len(hm.TeamAverages),
			ParticipantCount: hm.ParticipantCount,
		})
	}
}

// GET /participants/{participantID}/scores
// A participant's own score breakdown by round of review.
func ViewMyScoresHandler(svc *grades.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "participantID")
		if !ok {
			http.Error(w, "participantID required", http.StatusBadRequest)
			return
		}
		actor := actorFrom(r)
		allowed, err := svc.CanViewOwnScores(r.Context(), actor, id)
		if err != nil {
			storeError(w, err)
			return
		}
		if !allowed {
			metrics.AccessDenied.WithLabelValues("view_my_scores").Inc()
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		p, err := svc.Store().GetParticipant(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		a, err := svc.Store().GetAssignment(r.Context(), p.AssignmentID)
		if err != nil {
			storeError(w, err)
			return
		}
		// Feedback detail is team-scoped: only the participant's own user
		// or a teammate may read it.
		if !actor.HasPrivilegeAtLeast("ta") {
			own, err := svc.OwnRecordOrTeammate(r.Context(), actor, a, p)
			if err != nil {
				storeError(w, err)
				return
			}
			if !own {
				metrics.AccessDenied.WithLabelValues("view_my_scores").Inc()
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}
		idx, err := svc.QuestionIndexFor(r.Context(), a, p)
		if err != nil {
			storeError(w, err)
			return
		}
		res, err := svc.ParticipantScores(r.Context(), a, p, idx)
		if err != nil {
			storeError(w, err)
			return
		}
		topicID, _, err := svc.TopicIDFor(r.Context(), p)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{
			"participant": p,
			"assignment":  a,
			"scores":      res,
			"topic_id":    topicID,
		})
	}
}

// GET /participants/{participantID}/team
// Team view: the participant's team plus the anonymized heat map of review
// scores for the assignment.
func ViewTeamHandler(svc *grades.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "participantID")
		if !ok {
			http.Error(w, "participantID required", http.StatusBadRequest)
			return
		}
		allowed, err := svc.CanViewOwnTeam(r.Context(), actorFrom(r), id)
		if err != nil {
			storeError(w, err)
			return
		}
		if !allowed {
			metrics.AccessDenied.WithLabelValues("view_team").Inc()
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		p, err := svc.Store().GetParticipant(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		team, okTeam, err := svc.Store().TeamOf(r.Context(), p.ID)
		if err != nil {
			storeError(w, err)
			return
		}
		if !okTeam {
			http.Error(w, "participant has no team", http.StatusNotFound)
			return
		}
		hm, err := svc.AssembleHeatMap(r.Context(), p.AssignmentID)
		if err != nil {
			storeError(w, err)
			return
		}
		topicID, _, err := svc.TopicIDFor(r.Context(), p)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{
			"team":       team,
			"assignment": hm.Assignment,
			"topic_id":   topicID,
			"scores":     grades.RedactHeatMap(hm),
		})
	}
}

// GET /participants/{participantID}/edit
// Questions and current scores for instructor grade editing.
func EditGradeHandler(svc *grades.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "participantID")
		if !ok {
			http.Error(w, "participantID required", http.StatusBadRequest)
			return
		}
		p, err := svc.Store().GetParticipant(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		a, err := svc.Store().GetAssignment(r.Context(), p.AssignmentID)
		if err != nil {
			storeError(w, err)
			return
		}
		idx, err := svc.QuestionIndexFor(r.Context(), a, p)
		if err != nil {
			storeError(w, err)
			return
		}
		res, err := svc.ParticipantScores(r.Context(), a, p, idx)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{
			"participant": p,
			"assignment":  a,
			"questions":   idx,
			"scores":      res,
		})
	}
}

// GET /participants/{participantID}/instructor-review
// Routes an instructor to a new review or an existing one to edit.
func InstructorReviewHandler(svc *grades.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "participantID")
		if !ok {
			http.Error(w, "participantID required", http.StatusBadRequest)
			return
		}
		next, err := svc.ResolveInstructorReview(r.Context(), actorFrom(r), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, next)
	}
}

type updateGradeReq struct {
	Grade      *float64 `json:"grade"` // null clears the override
	TotalScore float64  `json:"total_score"`
}

// PATCH /participants/{participantID}/grade
func UpdateGradeHandler(svc *grades.Service, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "participantID")
		if !ok {
			http.Error(w, "participantID required", http.StatusBadRequest)
			return
		}
		var req updateGradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		p, note, err := svc.SetOverrideGrade(r.Context(), id, req.Grade, req.TotalScore)
		if err != nil {
			storeError(w, err)
			return
		}
		metrics.GradeWrites.WithLabelValues("override").Inc()
		typ := audit.TypeParticipantGradeSet
		if req.Grade == nil {
			typ = audit.TypeParticipantGradeCleared
		}
		payload, _ := json.Marshal(map[string]interface{}{
			"participant_id": id,
			"grade":          req.Grade,
			"set_by":         actorFrom(r).UserID,
		})
		_ = rec.Append(r.Context(), audit.Event{
			Type:     typ,
			Key:      formatID(id),
			DataJSON: string(payload),
		})
		writeJSON(w, map[string]interface{}{"participant": p, "note": note})
	}
}

type submissionGradeReq struct {
	GradeForSubmission   float64 `json:"grade_for_submission"`
	CommentForSubmission string  `json:"comment_for_submission"`
}

// POST /participants/{participantID}/submission-grade
// Stores the submission grade and comment on the participant's team.
func SaveSubmissionGradeHandler(svc *grades.Service, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "participantID")
		if !ok {
			http.Error(w, "participantID required", http.StatusBadRequest)
			return
		}
		var req submissionGradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		team, err := svc.SaveSubmissionGrade(r.Context(), id, req.GradeForSubmission, req.CommentForSubmission)
		if err != nil {
			storeError(w, err)
			return
		}
		metrics.GradeWrites.WithLabelValues("submission").Inc()
		payload, _ := json.Marshal(map[string]interface{}{
			"team_id": team.ID,
			"grade":   req.GradeForSubmission,
			"comment": req.CommentForSubmission,
			"set_by":  actorFrom(r).UserID,
		})
		_ = rec.Append(r.Context(), audit.Event{
			Type:     audit.TypeTeamSubmissionGraded,
			Key:      formatID(team.ID),
			DataJSON: string(payload),
		})
		writeJSON(w, map[string]interface{}{
			"team": team,
			"note": "Grade and comment for submission successfully saved.",
		})
	}
}
