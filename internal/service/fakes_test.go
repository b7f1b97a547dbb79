package service

import (
	"context"
	"sort"
	"time"

	"podium/internal/cache"
	"podium/internal/model"
	"podium/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory stand-ins for the Mongo repos and Redis caches. They keep
// the same contracts the real implementations document, including the
// duplicate-key rejections the services rely on.

var errDuplicate = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

type fakeCommitteeRepo struct {
	committees map[string]*model.Committee
}

func newFakeCommitteeRepo() *fakeCommitteeRepo {
	return &fakeCommitteeRepo{committees: make(map[string]*model.Committee)}
}

func (f *fakeCommitteeRepo) Create(ctx context.Context, committee *model.Committee) error {
	c := *committee
	f.committees[c.ID] = &c
	return nil
}

func (f *fakeCommitteeRepo) GetByID(ctx context.Context, id string) (*model.Committee, error) {
	if c, ok := f.committees[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCommitteeRepo) SetMode(ctx context.Context, id string, mode model.DebateMode) error {
	if c, ok := f.committees[id]; ok {
		c.CurrentMode = mode
		return nil
	}
	return mongo.ErrNoDocuments
}

func (f *fakeCommitteeRepo) UpdateInfo(ctx context.Context, id string, name, agenda *string) error {
	c, ok := f.committees[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if name != nil {
		c.Name = *name
	}
	if agenda != nil {
		c.Agenda = *agenda
	}
	return nil
}

func (f *fakeCommitteeRepo) Delete(ctx context.Context, id string) error {
	delete(f.committees, id)
	return nil
}

type fakeCountryRepo struct {
	countries map[string]*model.Country
}

func newFakeCountryRepo() *fakeCountryRepo {
	return &fakeCountryRepo{countries: make(map[string]*model.Country)}
}

func (f *fakeCountryRepo) Create(ctx context.Context, country *model.Country) error {
	c := *country
	f.countries[c.ID] = &c
	return nil
}

func (f *fakeCountryRepo) GetByID(ctx context.Context, id string) (*model.Country, error) {
	if c, ok := f.countries[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCountryRepo) ListByCommittee(ctx context.Context, committeeID string) ([]model.Country, error) {
	var out []model.Country
	for _, c := range f.countries {
		if c.CommitteeID == committeeID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortName < out[j].ShortName })
	return out, nil
}

func (f *fakeCountryRepo) CountByCommittee(ctx context.Context, committeeID string) (int, error) {
	n := 0
	for _, c := range f.countries {
		if c.CommitteeID == committeeID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCountryRepo) SetRoll(ctx context.Context, id string, roll model.Roll) (*model.Country, error) {
	c, ok := f.countries[id]
	if !ok {
		return nil, nil
	}
	c.Roll = roll
	copied := *c
	return &copied, nil
}

type fakeModeRepo struct {
	records map[string]*model.ModeData
}

func newFakeModeRepo() *fakeModeRepo {
	return &fakeModeRepo{records: make(map[string]*model.ModeData)}
}

func (f *fakeModeRepo) Create(ctx context.Context, md *model.ModeData) error {
	for _, existing := range f.records {
		if existing.CommitteeID == md.CommitteeID && existing.Mode == md.Mode {
			return errDuplicate
		}
	}
	copied := *md
	f.records[copied.ID] = &copied
	return nil
}

func (f *fakeModeRepo) GetActive(ctx context.Context, committee *model.Committee) (*model.ModeData, error) {
	return f.GetByMode(ctx, committee.ID, committee.CurrentMode)
}

func (f *fakeModeRepo) GetByMode(ctx context.Context, committeeID string, mode model.DebateMode) (*model.ModeData, error) {
	for _, md := range f.records {
		if md.CommitteeID == committeeID && md.Mode == mode {
			copied := *md
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeModeRepo) UpdateVariant(ctx context.Context, id string, mode model.DebateMode, fields map[string]any) error {
	md, ok := f.records[id]
	if !ok || md.Mode != mode {
		return mongo.ErrNoDocuments
	}
	for key, value := range fields {
		applyField(md, key, value)
	}
	return nil
}

func applyField(md *model.ModeData, key string, value any) {
	switch md.Mode {
	case model.ModeGsl:
		switch key {
		case "speechTotalTime":
			md.Gsl.SpeechTotalTime = value.(int)
		case "speechLastValue":
			md.Gsl.SpeechLastValue = value.(int)
		case "speechPlayedAt":
			md.Gsl.SpeechPlayedAt = toTimePtr(value)
		case "acceptingSignups":
			md.Gsl.AcceptingSignups = value.(bool)
		case "speakerId":
			md.Gsl.SpeakerID = toStringPtr(value)
		case "speechId":
			md.Gsl.SpeechID = toStringPtr(value)
		}
	case model.ModeMod:
		switch key {
		case "totalTime":
			md.Mod.TotalTime = value.(int)
		case "lastValue":
			md.Mod.LastValue = value.(int)
		case "playedAt":
			md.Mod.PlayedAt = toTimePtr(value)
		case "topic":
			md.Mod.Topic = value.(string)
		case "acceptingHands":
			md.Mod.AcceptingHands = value.(bool)
		case "speechTotalTime":
			md.Mod.SpeechTotalTime = value.(int)
		case "speechLastValue":
			md.Mod.SpeechLastValue = value.(int)
		case "speechPlayedAt":
			md.Mod.SpeechPlayedAt = toTimePtr(value)
		case "speakerId":
			md.Mod.SpeakerID = toStringPtr(value)
		case "speechId":
			md.Mod.SpeechID = toStringPtr(value)
		}
	case model.ModeUnmod:
		switch key {
		case "totalTime":
			md.Unmod.TotalTime = value.(int)
		case "lastValue":
			md.Unmod.LastValue = value.(int)
		case "playedAt":
			md.Unmod.PlayedAt = toTimePtr(value)
		case "topic":
			md.Unmod.Topic = value.(string)
		}
	case model.ModeSingle:
		switch key {
		case "speechTotalTime":
			md.Single.SpeechTotalTime = value.(int)
		case "speechLastValue":
			md.Single.SpeechLastValue = value.(int)
		case "speechPlayedAt":
			md.Single.SpeechPlayedAt = toTimePtr(value)
		case "speakerId":
			md.Single.SpeakerID = toStringPtr(value)
		case "speechId":
			md.Single.SpeechID = toStringPtr(value)
		}
	case model.ModeVoting:
		switch key {
		case "type":
			md.Voting.Type = value.(model.BallotType)
		case "topic":
			md.Voting.Topic = value.(string)
		case "currentCountryIndex":
			md.Voting.CurrentCountryIndex = value.(int)
		case "openToDelegateVotes":
			md.Voting.OpenToDelegateVotes = value.(bool)
		}
	}
}

func toTimePtr(value any) *time.Time {
	if value == nil {
		return nil
	}
	return value.(*time.Time)
}

func toStringPtr(value any) *string {
	if value == nil {
		return nil
	}
	s := value.(string)
	return &s
}

func (f *fakeModeRepo) AdvanceVotingIndex(ctx context.Context, id string, modulo int) (int, error) {
	md, ok := f.records[id]
	if !ok || md.Voting == nil {
		return 0, mongo.ErrNoDocuments
	}
	if modulo < 1 {
		modulo = 1
	}
	md.Voting.CurrentCountryIndex = (md.Voting.CurrentCountryIndex + 1) % modulo
	return md.Voting.CurrentCountryIndex, nil
}

func (f *fakeModeRepo) DeleteByMode(ctx context.Context, committeeID string, mode model.DebateMode) error {
	for id, md := range f.records {
		if md.CommitteeID == committeeID && md.Mode == mode {
			delete(f.records, id)
		}
	}
	return nil
}

type fakeListRepo struct {
	participants []model.ListParticipant
}

func (f *fakeListRepo) Add(ctx context.Context, p *model.ListParticipant) error {
	for _, existing := range f.participants {
		if existing.ModeDataID == p.ModeDataID && existing.CountryID == p.CountryID {
			return errDuplicate
		}
	}
	f.participants = append(f.participants, *p)
	return nil
}

func (f *fakeListRepo) List(ctx context.Context, modeDataID string) ([]model.ListParticipant, error) {
	var out []model.ListParticipant
	for _, p := range f.participants {
		if p.ModeDataID == modeDataID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeListRepo) Remove(ctx context.Context, id string) error {
	for i, p := range f.participants {
		if p.ID == id {
			f.participants = append(f.participants[:i], f.participants[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeListRepo) RemoveByCountry(ctx context.Context, modeDataID, countryID string) error {
	kept := f.participants[:0]
	for _, p := range f.participants {
		if !(p.ModeDataID == modeDataID && p.CountryID == countryID) {
			kept = append(kept, p)
		}
	}
	f.participants = kept
	return nil
}

func (f *fakeListRepo) Contains(ctx context.Context, modeDataID, countryID string) (bool, error) {
	for _, p := range f.participants {
		if p.ModeDataID == modeDataID && p.CountryID == countryID {
			return true, nil
		}
	}
	return false, nil
}

type fakeHandRepo struct {
	hands []model.RaisedHand
}

func (f *fakeHandRepo) Add(ctx context.Context, hand *model.RaisedHand) error {
	for _, existing := range f.hands {
		if existing.ModeDataID == hand.ModeDataID && existing.CountryID == hand.CountryID {
			return errDuplicate
		}
	}
	f.hands = append(f.hands, *hand)
	return nil
}

func (f *fakeHandRepo) List(ctx context.Context, modeDataID string) ([]model.RaisedHand, error) {
	var out []model.RaisedHand
	for _, h := range f.hands {
		if h.ModeDataID == modeDataID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHandRepo) RemoveByCountry(ctx context.Context, modeDataID, countryID string) error {
	kept := f.hands[:0]
	for _, h := range f.hands {
		if !(h.ModeDataID == modeDataID && h.CountryID == countryID) {
			kept = append(kept, h)
		}
	}
	f.hands = kept
	return nil
}

func (f *fakeHandRepo) DeleteAll(ctx context.Context, modeDataID string) error {
	kept := f.hands[:0]
	for _, h := range f.hands {
		if h.ModeDataID != modeDataID {
			kept = append(kept, h)
		}
	}
	f.hands = kept
	return nil
}

type fakeVoteRepo struct {
	votes []model.Vote
}

func (f *fakeVoteRepo) Upsert(ctx context.Context, vote *model.Vote) error {
	for i, existing := range f.votes {
		if existing.ModeDataID == vote.ModeDataID && existing.CountryID == vote.CountryID {
			f.votes[i].Choice = vote.Choice
			return nil
		}
	}
	f.votes = append(f.votes, *vote)
	return nil
}

func (f *fakeVoteRepo) Get(ctx context.Context, modeDataID, countryID string) (*model.Vote, error) {
	for _, v := range f.votes {
		if v.ModeDataID == modeDataID && v.CountryID == countryID {
			copied := v
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeVoteRepo) List(ctx context.Context, modeDataID string) ([]model.Vote, error) {
	var out []model.Vote
	for _, v := range f.votes {
		if v.ModeDataID == modeDataID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVoteRepo) DeleteAll(ctx context.Context, modeDataID string) error {
	kept := f.votes[:0]
	for _, v := range f.votes {
		if v.ModeDataID != modeDataID {
			kept = append(kept, v)
		}
	}
	f.votes = kept
	return nil
}

type fakeSpeechRepo struct {
	speeches map[string]*model.Speech
}

func newFakeSpeechRepo() *fakeSpeechRepo {
	return &fakeSpeechRepo{speeches: make(map[string]*model.Speech)}
}

func (f *fakeSpeechRepo) Create(ctx context.Context, speech *model.Speech) error {
	copied := *speech
	f.speeches[copied.ID] = &copied
	return nil
}

func (f *fakeSpeechRepo) GetByID(ctx context.Context, id string) (*model.Speech, error) {
	if s, ok := f.speeches[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeSpeechRepo) List(ctx context.Context, committeeID string) ([]model.Speech, error) {
	var out []model.Speech
	for _, s := range f.speeches {
		if s.CommitteeID == committeeID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeSpeechRepo) Close(ctx context.Context, id string, length int) error {
	s, ok := f.speeches[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if s.Length != nil {
		return repository.ErrAlreadyClosed
	}
	s.Length = &length
	return nil
}

func (f *fakeSpeechRepo) Rate(ctx context.Context, id string, rating *int, comments *string) (*model.Speech, error) {
	s, ok := f.speeches[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if rating != nil {
		s.Rating = rating
	}
	if comments != nil {
		s.Comments = *comments
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSpeechRepo) Attribute(ctx context.Context, id string, delegateID string) (*model.Speech, error) {
	s, ok := f.speeches[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	s.DelegateID = &delegateID
	copied := *s
	return &copied, nil
}

func (f *fakeSpeechRepo) DeleteAll(ctx context.Context, committeeID string) error {
	for id, s := range f.speeches {
		if s.CommitteeID == committeeID {
			delete(f.speeches, id)
		}
	}
	return nil
}

func (f *fakeSpeechRepo) SumByCountry(ctx context.Context, countryID string) ([]repository.DelegateSum, error) {
	sums := make(map[string]int)
	var anonymous int
	for _, s := range f.speeches {
		if s.CountryID != countryID || s.Length == nil {
			continue
		}
		if s.DelegateID == nil {
			anonymous += *s.Length
		} else {
			sums[*s.DelegateID] += *s.Length
		}
	}
	var out []repository.DelegateSum
	if anonymous > 0 {
		out = append(out, repository.DelegateSum{Total: anonymous})
	}
	for delegateID, total := range sums {
		d := delegateID
		out = append(out, repository.DelegateSum{DelegateID: &d, Total: total})
	}
	return out, nil
}

type fakeSnapshotCache struct {
	snapshots   map[string]model.Partial
	invalidated int
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{snapshots: make(map[string]model.Partial)}
}

func (f *fakeSnapshotCache) Set(ctx context.Context, committeeID string, snapshot model.Partial) error {
	f.snapshots[committeeID] = snapshot
	return nil
}

func (f *fakeSnapshotCache) Get(ctx context.Context, committeeID string) (model.Partial, error) {
	return f.snapshots[committeeID], nil
}

func (f *fakeSnapshotCache) Invalidate(ctx context.Context, committeeID string) error {
	delete(f.snapshots, committeeID)
	f.invalidated++
	return nil
}

type fakeStatsCache struct {
	seconds map[string]int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{seconds: make(map[string]int)}
}

func (f *fakeStatsCache) AddSpeakingTime(ctx context.Context, committeeID, countryID string, seconds int) error {
	f.seconds[committeeID+":"+countryID] += seconds
	return nil
}

func (f *fakeStatsCache) GetSpeakingTime(ctx context.Context, committeeID, countryID string) (int, error) {
	return f.seconds[committeeID+":"+countryID], nil
}

func (f *fakeStatsCache) GetTopSpeakers(ctx context.Context, committeeID string, limit int) ([]cache.SpeakerEntry, error) {
	return nil, nil
}

func (f *fakeStatsCache) Reset(ctx context.Context, committeeID string) error {
	for key := range f.seconds {
		if len(key) > len(committeeID) && key[:len(committeeID)] == committeeID {
			delete(f.seconds, key)
		}
	}
	return nil
}

type broadcastCall struct {
	committeeID string
	channel     string
	event       model.UpdateEvent
}

type fakeBroadcaster struct {
	calls         []broadcastCall
	documentCalls []broadcastCall
	disconnected  []string
}

func (f *fakeBroadcaster) Broadcast(committeeID, channel string, event model.UpdateEvent) {
	f.calls = append(f.calls, broadcastCall{committeeID: committeeID, channel: channel, event: event})
}

func (f *fakeBroadcaster) BroadcastDocument(documentID string, event model.UpdateEvent) {
	f.documentCalls = append(f.documentCalls, broadcastCall{committeeID: documentID, event: event})
}

func (f *fakeBroadcaster) DisconnectCommittee(committeeID string) {
	f.disconnected = append(f.disconnected, committeeID)
}

func (f *fakeBroadcaster) lastOn(channel string) *broadcastCall {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].channel == channel {
			return &f.calls[i]
		}
	}
	return nil
}
