package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/justsurfingit/careerhub/internal/store"
)

const (
	skillWeight = 80
	titleWeight = 20

	defaultMatchLimit = 10
)

type MatchingService struct {
	Store store.Store
	CVs   *CVService
}

func NewMatchingService(s store.Store, cvs *CVService) *MatchingService {
	return &MatchingService{Store: s, CVs: cvs}
}

// titleWords collects the words of the CV headline and past roles that are long
// enough to be meaningful in a job title.
func titleWords(cv *models.CV) map[string]bool {
	words := map[string]bool{}
	add := func(s string) {
		for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if len(w) >= 3 {
				words[w] = true
			}
		}
	}
	add(cv.Headline)
	for _, e := range cv.Experience {
		add(e.Role)
	}
	return words
}

// Score rates how well cv fits job from 0 to 100: skill coverage of the job's
// skills weighs 80, a shared title word 20.
func Score(cv *models.CV, job *models.Job) dtos.MatchResult {
	res := dtos.MatchResult{
		JobID:         job.ID,
		Title:         job.Title,
		CompanyName:   job.Company.Name,
		Location:      job.Location,
		MatchedSkills: []string{},
		MissingSkills: []string{},
	}

	have := make(map[string]bool, len(cv.Skills))
	for _, s := range cv.Skills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}
	jobSkills := normalizeSkills(job.Skills)
	for _, s := range jobSkills {
		if have[strings.ToLower(s)] {
			res.MatchedSkills = append(res.MatchedSkills, s)
		} else {
			res.MissingSkills = append(res.MissingSkills, s)
		}
	}

	score := 0.0
	if len(jobSkills) > 0 {
		score = skillWeight * float64(len(res.MatchedSkills)) / float64(len(jobSkills))
	}
	words := titleWords(cv)
	for _, w := range strings.FieldsFunc(strings.ToLower(job.Title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if words[w] {
			score += titleWeight
			break
		}
	}
	res.MatchScore = int(math.Round(score))
	return res
}

// MatchCV ranks every job the user tracks against their CV, best first.
func (s *MatchingService) MatchCV(ctx context.Context, userID, cvID uint, limit int) ([]dtos.MatchResult, error) {
	cv, err := s.CVs.Get(ctx, userID, cvID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.Store.ListJobs(ctx, store.JobQuery{UserID: userID})
	if err != nil {
		return nil, err
	}

	results := make([]dtos.MatchResult, 0, len(jobs))
	for i := range jobs {
		results = append(results, Score(cv, &jobs[i]))
	}
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].MatchScore != results[b].MatchScore {
			return results[a].MatchScore > results[b].MatchScore
		}
		return results[a].JobID < results[b].JobID
	})

	if limit <= 0 {
		limit = defaultMatchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// MatchJob scores a single job against the user's CV.
func (s *MatchingService) MatchJob(ctx context.Context, userID, cvID, jobID uint) (*dtos.MatchResult, error) {
	cv, err := s.CVs.Get(ctx, userID, cvID)
	if err != nil {
		return nil, err
	}
	job, err := s.Store.JobByID(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && job.UserID != userID) {
		return nil, fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	res := Score(cv, job)
	return &res, nil
}
