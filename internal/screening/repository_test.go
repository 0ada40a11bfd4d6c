package screening

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"child-health-tracker/internal/growth"
	"child-health-tracker/internal/platform/database"
)

// openTestRepo migrates a fresh SQLite file and stores one profile for the
// results to reference.
func openTestRepo(t *testing.T) (*database.DB, Repository, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", database.DialectConfig{
		Path: filepath.Join(t.TempDir(), "screening.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Migrate("../../migrations", true); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	p := growth.NewProfile("하늘", testBirth, growth.GenderFemale, nil)
	if err := growth.NewRepository(db).Save(ctx, &p); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	return db, NewRepository(db), p.ID
}

func TestSQLRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	_, repo, profileID := openTestRepo(t)

	takenAt := time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)
	res := Result{
		ProfileID:      profileID,
		StageID:        "S3",
		TakenAt:        takenAt,
		ChildAgeMonths: 18,
		Answers:        []Answer{{QuestionID: "18-24_GM_1", Score: 3}, {QuestionID: "18-24_FM_1", Score: 1}},
		Revision:       1,
	}
	if err := repo.Save(ctx, &res); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, profileID, "S3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ProfileID != profileID || got.ChildAgeMonths != 18 || got.Revision != 1 {
		t.Errorf("unexpected result %+v", got)
	}
	if !got.TakenAt.Equal(takenAt) {
		t.Errorf("taken at = %v, want %v", got.TakenAt, takenAt)
	}
	if len(got.Answers) != 2 || got.Answers[0] != res.Answers[0] || got.Answers[1] != res.Answers[1] {
		t.Errorf("answers = %+v", got.Answers)
	}
}

func TestSQLRepository_ResubmissionReplacesResult(t *testing.T) {
	ctx := context.Background()
	_, repo, profileID := openTestRepo(t)

	first := Result{ProfileID: profileID, StageID: "S3", TakenAt: time.Now().UTC(), ChildAgeMonths: 17,
		Answers: []Answer{{QuestionID: "18-24_GM_1", Score: 2}}, Revision: 1}
	if err := repo.Save(ctx, &first); err != nil {
		t.Fatal(err)
	}
	second := Result{ProfileID: profileID, StageID: "S3", TakenAt: time.Now().UTC(), ChildAgeMonths: 18,
		Answers: []Answer{}, Revision: 2}
	if err := repo.Save(ctx, &second); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	other := Result{ProfileID: profileID, StageID: "S2", TakenAt: time.Now().UTC(), ChildAgeMonths: 11, Revision: 1}
	if err := repo.Save(ctx, &other); err != nil {
		t.Fatal(err)
	}

	results, err := repo.ListByProfile(ctx, profileID)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].StageID != "S2" || results[1].StageID != "S3" {
		t.Fatalf("results = %+v", results)
	}
	if results[1].Revision != 2 || results[1].ChildAgeMonths != 18 || len(results[1].Answers) != 0 {
		t.Errorf("resubmitted result not replaced: %+v", results[1])
	}
}

func TestSQLRepository_CorruptAnswersReadEmpty(t *testing.T) {
	ctx := context.Background()
	db, repo, profileID := openTestRepo(t)

	res := Result{ProfileID: profileID, StageID: "S1", TakenAt: time.Now().UTC(), ChildAgeMonths: 5,
		Answers: []Answer{{QuestionID: "4-6_GM_1", Score: 3}}, Revision: 1}
	if err := repo.Save(ctx, &res); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE assessment_results SET answers = ? WHERE profile_id = ?`, "[{broken", profileID); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, profileID, "S1")
	if err != nil {
		t.Fatalf("corrupt answers should not fail the result: %v", err)
	}
	if got.Answers == nil || len(got.Answers) != 0 {
		t.Errorf("answers = %#v, want empty", got.Answers)
	}
}

func TestSQLRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	_, repo, profileID := openTestRepo(t)

	if _, err := repo.Get(ctx, profileID, "S4"); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("expected ErrResultNotFound, got %v", err)
	}
	results, err := repo.ListByProfile(ctx, uuid.New())
	if err != nil || len(results) != 0 {
		t.Errorf("unknown profile: results=%v err=%v", results, err)
	}
}

func TestSQLRepository_DeletingProfileRemovesResults(t *testing.T) {
	ctx := context.Background()
	db, repo, profileID := openTestRepo(t)

	res := Result{ProfileID: profileID, StageID: "S1", TakenAt: time.Now().UTC(), ChildAgeMonths: 5, Revision: 1}
	if err := repo.Save(ctx, &res); err != nil {
		t.Fatal(err)
	}
	if err := growth.NewRepository(db).Delete(ctx, profileID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}

	results, err := repo.ListByProfile(ctx, profileID)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results should cascade with the profile, got %d", len(results))
	}
}
