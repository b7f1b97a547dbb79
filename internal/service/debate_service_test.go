package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"podium/internal/model"
)

type debateEnv struct {
	committeeRepo *fakeCommitteeRepo
	countryRepo   *fakeCountryRepo
	modeRepo      *fakeModeRepo
	listRepo      *fakeListRepo
	handRepo      *fakeHandRepo
	voteRepo      *fakeVoteRepo
	speechRepo    *fakeSpeechRepo
	snapshots     *fakeSnapshotCache
	bc            *fakeBroadcaster

	committeeSvc *CommitteeService
	speechSvc    *SpeechService
	debateSvc    *DebateService

	chair    *model.Caller
	modeData *model.ModeData
	now      time.Time
}

func delegateOf(countryID string) *model.Caller {
	return &model.Caller{
		Role:        model.RoleDelegate,
		CommitteeID: "c1",
		CountryID:   countryID,
		DelegateID:  "d_" + countryID,
	}
}

func newDebateEnv(t *testing.T, mode model.DebateMode) *debateEnv {
	t.Helper()
	ctx := context.Background()

	env := &debateEnv{
		committeeRepo: newFakeCommitteeRepo(),
		countryRepo:   newFakeCountryRepo(),
		modeRepo:      newFakeModeRepo(),
		listRepo:      &fakeListRepo{},
		handRepo:      &fakeHandRepo{},
		voteRepo:      &fakeVoteRepo{},
		speechRepo:    newFakeSpeechRepo(),
		snapshots:     newFakeSnapshotCache(),
		bc:            &fakeBroadcaster{},
		chair:         &model.Caller{Role: model.RoleChair, CommitteeID: "c1"},
		now:           time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}

	env.committeeRepo.Create(ctx, &model.Committee{
		ID:          "c1",
		Name:        "Security Council",
		CurrentMode: mode,
	})
	for _, country := range []model.Country{
		{ID: "ar", CommitteeID: "c1", Name: "Argentina", ShortName: "AR", Roll: model.RollPresentAndVoting},
		{ID: "br", CommitteeID: "c1", Name: "Brazil", ShortName: "BR", Roll: model.RollPresentAndVoting},
		{ID: "cn", CommitteeID: "c1", Name: "China", ShortName: "CN", Roll: model.RollPresentAndVoting},
	} {
		env.countryRepo.Create(ctx, &country)
	}

	env.modeData = model.NewModeData("md1", "c1", mode)
	if err := env.modeRepo.Create(ctx, env.modeData); err != nil {
		t.Fatalf("seed mode data: %v", err)
	}

	stats := newFakeStatsCache()
	env.committeeSvc = NewCommitteeService(env.committeeRepo, env.countryRepo, env.modeRepo,
		env.listRepo, env.handRepo, env.voteRepo, env.snapshots)
	env.speechSvc = NewSpeechService(env.speechRepo, env.countryRepo, stats)
	env.debateSvc = NewDebateService(env.committeeRepo, env.countryRepo, env.modeRepo,
		env.listRepo, env.handRepo, env.voteRepo, env.committeeSvc, env.speechSvc, env.snapshots)

	env.committeeSvc.SetBroadcaster(env.bc)
	env.speechSvc.SetBroadcaster(env.bc)
	env.debateSvc.SetBroadcaster(env.bc)

	env.debateSvc.now = func() time.Time { return env.now }
	return env
}

func (env *debateEnv) activeData(t *testing.T) *model.ModeData {
	t.Helper()
	committee, err := env.committeeRepo.GetByID(context.Background(), "c1")
	if err != nil || committee == nil {
		t.Fatalf("committee lookup failed: %v", err)
	}
	md, err := env.modeRepo.GetActive(context.Background(), committee)
	if err != nil {
		t.Fatalf("mode data lookup failed: %v", err)
	}
	return md
}

func TestChangeModeCreatesDefaults(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)
	ctx := context.Background()

	if err := env.debateSvc.ChangeMode(ctx, env.chair, model.ModeMod); err != nil {
		t.Fatalf("ChangeMode: %v", err)
	}

	committee, _ := env.committeeRepo.GetByID(ctx, "c1")
	if committee.CurrentMode != model.ModeMod {
		t.Fatalf("expected mode mod, got %s", committee.CurrentMode)
	}

	md, _ := env.modeRepo.GetByMode(ctx, "c1", model.ModeMod)
	if md == nil || md.Mod == nil {
		t.Fatal("moderated record not created")
	}
	if md.Mod.SpeechTotalTime != model.DefaultSpeechSeconds ||
		md.Mod.TotalTime != model.DefaultCaucusSeconds ||
		md.Mod.Topic != model.DefaultModTopic ||
		md.Mod.AcceptingHands {
		t.Fatalf("unexpected defaults: %+v", md.Mod)
	}

	// GSL survives mode excursions; its queue can be resumed later.
	if gsl, _ := env.modeRepo.GetByMode(ctx, "c1", model.ModeGsl); gsl == nil {
		t.Fatal("gsl record should be retained")
	}

	last := env.bc.lastOn(model.ChannelCommittee)
	if last == nil || last.event.Type != model.EventFull {
		t.Fatalf("expected full snapshot broadcast, got %+v", last)
	}
}

func TestChangeModeClosesOpenSpeech(t *testing.T) {
	env := newDebateEnv(t, model.ModeMod)
	ctx := context.Background()

	if err := env.debateSvc.SetSpeaker(ctx, env.chair, "br"); err != nil {
		t.Fatalf("SetSpeaker: %v", err)
	}
	md := env.activeData(t)
	if md.Mod.SpeechID == nil {
		t.Fatal("expected open speech")
	}
	speechID := *md.Mod.SpeechID

	// 60s speech, 40s remaining and paused: 20s were spoken.
	env.modeRepo.UpdateVariant(ctx, "md1", model.ModeMod, map[string]any{
		"speechLastValue": 40,
		"speechPlayedAt":  nil,
	})

	if err := env.debateSvc.ChangeMode(ctx, env.chair, model.ModeVoting); err != nil {
		t.Fatalf("ChangeMode: %v", err)
	}

	speech, _ := env.speechRepo.GetByID(ctx, speechID)
	if speech.Length == nil || *speech.Length != 20 {
		t.Fatalf("expected speech closed with length 20, got %+v", speech.Length)
	}
	if md, _ := env.modeRepo.GetByMode(ctx, "c1", model.ModeMod); md != nil {
		t.Fatal("moderated record should be deleted on exit")
	}
	if md, _ := env.modeRepo.GetByMode(ctx, "c1", model.ModeVoting); md == nil || md.Voting == nil {
		t.Fatal("voting record not created")
	}
}

func TestChangeModeDelegateForbidden(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)

	err := env.debateSvc.ChangeMode(context.Background(), delegateOf("br"), model.ModeMod)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestChangeModeRejectsUnknownMode(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)

	err := env.debateSvc.ChangeMode(context.Background(), env.chair, model.DebateMode("committee-of-the-whole"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNextSpeakerConsumesQueueInInsertionOrder(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)
	ctx := context.Background()

	for _, countryID := range []string{"cn", "ar", "br"} {
		if err := env.debateSvc.AddListParticipant(ctx, env.chair, countryID); err != nil {
			t.Fatalf("AddListParticipant(%s): %v", countryID, err)
		}
		env.now = env.now.Add(time.Second)
	}

	if err := env.debateSvc.NextSpeaker(ctx, env.chair); err != nil {
		t.Fatalf("NextSpeaker: %v", err)
	}

	md := env.activeData(t)
	if md.Gsl.SpeakerID == nil || *md.Gsl.SpeakerID != "cn" {
		t.Fatalf("expected cn on the floor, got %v", md.Gsl.SpeakerID)
	}
	if md.Gsl.SpeechID == nil {
		t.Fatal("expected an open ledger entry")
	}
	if md.Gsl.SpeechLastValue != model.DefaultSpeechSeconds || md.Gsl.SpeechPlayedAt != nil {
		t.Fatal("expected a fresh paused timer")
	}

	queue, _ := env.listRepo.List(ctx, "md1")
	if len(queue) != 2 || queue[0].CountryID != "ar" || queue[1].CountryID != "br" {
		t.Fatalf("unexpected remaining queue: %+v", queue)
	}

	firstSpeech := *md.Gsl.SpeechID
	if err := env.debateSvc.NextSpeaker(ctx, env.chair); err != nil {
		t.Fatalf("second NextSpeaker: %v", err)
	}
	closed, _ := env.speechRepo.GetByID(ctx, firstSpeech)
	if closed.Length == nil {
		t.Fatal("previous speech should be closed when the floor advances")
	}

	md = env.activeData(t)
	if *md.Gsl.SpeakerID != "ar" {
		t.Fatalf("expected ar on the floor, got %s", *md.Gsl.SpeakerID)
	}
}

func TestNextSpeakerEmptyQueueClearsFloor(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)
	ctx := context.Background()

	if err := env.debateSvc.NextSpeaker(ctx, env.chair); err != nil {
		t.Fatalf("NextSpeaker: %v", err)
	}

	md := env.activeData(t)
	if md.Gsl.SpeakerID != nil || md.Gsl.SpeechID != nil {
		t.Fatal("floor should be cleared")
	}
	if md.Gsl.SpeechLastValue != md.Gsl.SpeechTotalTime || md.Gsl.SpeechPlayedAt != nil {
		t.Fatal("timer should be reset and paused")
	}
}

func TestAddListParticipantDelegateGates(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)
	ctx := context.Background()

	// Signups are closed by default.
	if err := env.debateSvc.AddListParticipant(ctx, delegateOf("br"), "br"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden with closed signups, got %v", err)
	}

	env.modeRepo.UpdateVariant(ctx, "md1", model.ModeGsl, map[string]any{"acceptingSignups": true})

	// Only for the delegate's own country.
	if err := env.debateSvc.AddListParticipant(ctx, delegateOf("br"), "ar"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign country, got %v", err)
	}

	if err := env.debateSvc.AddListParticipant(ctx, delegateOf("br"), "br"); err != nil {
		t.Fatalf("AddListParticipant: %v", err)
	}

	before := len(env.bc.calls)
	if err := env.debateSvc.AddListParticipant(ctx, delegateOf("br"), "br"); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition on duplicate signup, got %v", err)
	}
	if len(env.bc.calls) != before {
		t.Fatal("rejected signup must not broadcast")
	}
}

func TestRaiseHandSetSemantics(t *testing.T) {
	env := newDebateEnv(t, model.ModeMod)
	ctx := context.Background()

	// Hands are closed to delegates until the chair opens them.
	if err := env.debateSvc.RaiseHand(ctx, delegateOf("ar"), "ar"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden with closed hands, got %v", err)
	}

	env.modeRepo.UpdateVariant(ctx, "md1", model.ModeMod, map[string]any{"acceptingHands": true})

	if err := env.debateSvc.RaiseHand(ctx, delegateOf("ar"), "ar"); err != nil {
		t.Fatalf("RaiseHand: %v", err)
	}
	// Raising an already-raised hand is absorbed.
	if err := env.debateSvc.RaiseHand(ctx, delegateOf("ar"), "ar"); err != nil {
		t.Fatalf("repeat RaiseHand: %v", err)
	}
	hands, _ := env.handRepo.List(ctx, "md1")
	if len(hands) != 1 {
		t.Fatalf("expected one raised hand, got %d", len(hands))
	}

	// Lowering twice is a no-op the second time.
	if err := env.debateSvc.LowerHand(ctx, delegateOf("ar"), "ar"); err != nil {
		t.Fatalf("LowerHand: %v", err)
	}
	if err := env.debateSvc.LowerHand(ctx, delegateOf("ar"), "ar"); err != nil {
		t.Fatalf("repeat LowerHand: %v", err)
	}
	hands, _ = env.handRepo.List(ctx, "md1")
	if len(hands) != 0 {
		t.Fatalf("expected no raised hands, got %d", len(hands))
	}
}

func TestSetSpeakerTimerPerMode(t *testing.T) {
	t.Run("single speaker resets to total", func(t *testing.T) {
		env := newDebateEnv(t, model.ModeSingle)
		ctx := context.Background()

		env.modeRepo.UpdateVariant(ctx, "md1", model.ModeSingle, map[string]any{"speechLastValue": 12})
		if err := env.debateSvc.SetSpeaker(ctx, env.chair, "br"); err != nil {
			t.Fatalf("SetSpeaker: %v", err)
		}

		md := env.activeData(t)
		if md.Single.SpeechLastValue != md.Single.SpeechTotalTime {
			t.Fatalf("expected timer reset to %d, got %d", md.Single.SpeechTotalTime, md.Single.SpeechLastValue)
		}
	})

	t.Run("moderated pauses at last value", func(t *testing.T) {
		env := newDebateEnv(t, model.ModeMod)
		ctx := context.Background()

		env.modeRepo.UpdateVariant(ctx, "md1", model.ModeMod, map[string]any{"speechLastValue": 12})
		if err := env.debateSvc.SetSpeaker(ctx, env.chair, "br"); err != nil {
			t.Fatalf("SetSpeaker: %v", err)
		}

		md := env.activeData(t)
		if md.Mod.SpeechLastValue != 12 || md.Mod.SpeechPlayedAt != nil {
			t.Fatalf("expected timer paused at 12, got %d", md.Mod.SpeechLastValue)
		}
		if md.Mod.SpeakerID == nil || *md.Mod.SpeakerID != "br" {
			t.Fatal("expected br on the floor")
		}
	})

	t.Run("delegate forbidden", func(t *testing.T) {
		env := newDebateEnv(t, model.ModeSingle)

		err := env.debateSvc.SetSpeaker(context.Background(), delegateOf("br"), "br")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestYieldTimeKeepsRunningTimer(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)
	ctx := context.Background()

	playedAt := env.now.Add(-10 * time.Second)
	env.modeRepo.UpdateVariant(ctx, "md1", model.ModeGsl, map[string]any{
		"speakerId":       "ar",
		"speechLastValue": 45,
		"speechPlayedAt":  &playedAt,
	})

	if err := env.debateSvc.YieldTime(ctx, delegateOf("ar"), "br"); err != nil {
		t.Fatalf("YieldTime: %v", err)
	}

	md := env.activeData(t)
	if md.Gsl.SpeakerID == nil || *md.Gsl.SpeakerID != "br" {
		t.Fatal("expected br on the floor")
	}
	if md.Gsl.SpeechLastValue != 45 || md.Gsl.SpeechPlayedAt == nil {
		t.Fatal("yield must not touch the running timer")
	}
	if md.Gsl.SpeechID == nil {
		t.Fatal("expected a fresh ledger entry for the new speaker")
	}

	// A delegate who does not hold the floor cannot yield it.
	err := env.debateSvc.YieldTime(ctx, delegateOf("cn"), "ar")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestVoteOverwritesPriorBallot(t *testing.T) {
	env := newDebateEnv(t, model.ModeVoting)
	ctx := context.Background()

	env.modeRepo.UpdateVariant(ctx, "md1", model.ModeVoting, map[string]any{"openToDelegateVotes": true})

	if err := env.debateSvc.Vote(ctx, delegateOf("br"), "br", model.VoteFor); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if err := env.debateSvc.Vote(ctx, delegateOf("br"), "br", model.VoteAgainst); err != nil {
		t.Fatalf("re-vote: %v", err)
	}

	votes, _ := env.voteRepo.List(ctx, "md1")
	if len(votes) != 1 || votes[0].Choice != model.VoteAgainst {
		t.Fatalf("expected single overwritten ballot, got %+v", votes)
	}

	// The cursor advances on every successful vote, including re-votes.
	md := env.activeData(t)
	if md.Voting.CurrentCountryIndex != 2 {
		t.Fatalf("expected cursor at 2, got %d", md.Voting.CurrentCountryIndex)
	}
}

func TestVoteCursorWrapsAtCountryCount(t *testing.T) {
	env := newDebateEnv(t, model.ModeVoting)
	ctx := context.Background()

	for _, countryID := range []string{"ar", "br", "cn"} {
		if err := env.debateSvc.Vote(ctx, env.chair, countryID, model.VoteAbstain); err != nil {
			t.Fatalf("Vote(%s): %v", countryID, err)
		}
	}

	md := env.activeData(t)
	if md.Voting.CurrentCountryIndex != 0 {
		t.Fatalf("expected cursor wrapped to 0, got %d", md.Voting.CurrentCountryIndex)
	}
}

func TestVoteDelegateGates(t *testing.T) {
	env := newDebateEnv(t, model.ModeVoting)
	ctx := context.Background()

	// Ballot closed to delegates; the chair can still record votes.
	if err := env.debateSvc.Vote(ctx, delegateOf("br"), "br", model.VoteFor); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on closed ballot, got %v", err)
	}
	if err := env.debateSvc.Vote(ctx, env.chair, "br", model.VoteFor); err != nil {
		t.Fatalf("chair vote: %v", err)
	}

	// Absent countries cannot vote.
	env.countryRepo.SetRoll(ctx, "ar", model.RollAbsent)
	if err := env.debateSvc.Vote(ctx, env.chair, "ar", model.VoteFor); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for absent country, got %v", err)
	}

	if err := env.debateSvc.Vote(ctx, env.chair, "br", model.VoteChoice("present")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown choice, got %v", err)
	}
}

func TestClearVotes(t *testing.T) {
	env := newDebateEnv(t, model.ModeVoting)
	ctx := context.Background()

	if err := env.debateSvc.Vote(ctx, env.chair, "br", model.VoteFor); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if err := env.debateSvc.ClearVotes(ctx, delegateOf("br")); !errors.Is(err, ErrForbidden) {
		t.Fatal("delegates must not clear the ballot")
	}
	if err := env.debateSvc.ClearVotes(ctx, env.chair); err != nil {
		t.Fatalf("ClearVotes: %v", err)
	}

	votes, _ := env.voteRepo.List(ctx, "md1")
	if len(votes) != 0 {
		t.Fatalf("expected empty ballot, got %d votes", len(votes))
	}

	last := env.bc.lastOn(model.ChannelCommittee)
	partial, ok := last.event.Data.(model.Partial)
	if !ok {
		t.Fatalf("expected partial payload, got %T", last.event.Data)
	}
	if _, ok := partial["votes"]; !ok {
		t.Fatal("expected votes key in partial")
	}
}

func TestModeMismatchSignalsStaleClient(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)
	ctx := context.Background()

	if err := env.debateSvc.RaiseHand(ctx, env.chair, "br"); !errors.Is(err, ErrModeMismatch) {
		t.Fatalf("expected ErrModeMismatch, got %v", err)
	}
	if err := env.debateSvc.Vote(ctx, env.chair, "br", model.VoteFor); !errors.Is(err, ErrModeMismatch) {
		t.Fatalf("expected ErrModeMismatch, got %v", err)
	}
}

func TestUpdateGslDataValidatesAndBroadcasts(t *testing.T) {
	env := newDebateEnv(t, model.ModeGsl)
	ctx := context.Background()

	total := 90
	signups := true
	err := env.debateSvc.UpdateGslData(ctx, env.chair, GslUpdate{
		SpeechTotalTime:  &total,
		AcceptingSignups: &signups,
	})
	if err != nil {
		t.Fatalf("UpdateGslData: %v", err)
	}

	md := env.activeData(t)
	if md.Gsl.SpeechTotalTime != 90 || !md.Gsl.AcceptingSignups {
		t.Fatalf("update not applied: %+v", md.Gsl)
	}

	last := env.bc.lastOn(model.ChannelCommittee)
	if last == nil || last.event.Type != model.EventPartial {
		t.Fatalf("expected partial broadcast, got %+v", last)
	}

	negative := -5
	err = env.debateSvc.UpdateGslData(ctx, env.chair, GslUpdate{SpeechTotalTime: &negative})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if err := env.debateSvc.UpdateGslData(ctx, delegateOf("br"), GslUpdate{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for delegate, got %v", err)
	}
}

func TestUpdateModDataPausesTimer(t *testing.T) {
	env := newDebateEnv(t, model.ModeMod)
	ctx := context.Background()

	playedAt := env.now
	err := env.debateSvc.UpdateModData(ctx, env.chair, ModUpdate{
		PlayedAt: model.OptionalTime{Set: true, Value: &playedAt},
	})
	if err != nil {
		t.Fatalf("UpdateModData: %v", err)
	}
	if md := env.activeData(t); md.Mod.PlayedAt == nil {
		t.Fatal("expected caucus timer running")
	}

	// Explicit null pauses; an absent field leaves the timer alone.
	err = env.debateSvc.UpdateModData(ctx, env.chair, ModUpdate{
		PlayedAt: model.OptionalTime{Set: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if md := env.activeData(t); md.Mod.PlayedAt != nil {
		t.Fatal("expected caucus timer paused")
	}
}
