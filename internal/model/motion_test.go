package model

import "testing"

func TestMotionValidate(t *testing.T) {
	topic := "Nuclear disarmament"
	empty := ""

	testDefs := []struct {
		name    string
		motion  Motion
		wantErr bool
	}{
		{"appeal with note", Motion{Type: MotionAppeal, Note: "point of order overruled"}, false},
		{"appeal without note", Motion{Type: MotionAppeal}, true},
		{"moderated complete", Motion{Type: MotionModerated, Topic: &topic, Duration: 600, SpeechDuration: 60}, false},
		{"moderated missing topic", Motion{Type: MotionModerated, Duration: 600, SpeechDuration: 60}, true},
		{"moderated empty topic", Motion{Type: MotionModerated, Topic: &empty, Duration: 600, SpeechDuration: 60}, true},
		{"moderated zero duration", Motion{Type: MotionModerated, Topic: &topic, SpeechDuration: 60}, true},
		{"moderated zero speech duration", Motion{Type: MotionModerated, Topic: &topic, Duration: 600}, true},
		{"unmoderated complete", Motion{Type: MotionUnmoderated, Topic: &topic, Duration: 600}, false},
		{"unmoderated missing duration", Motion{Type: MotionUnmoderated, Topic: &topic}, true},
		{"tour complete", Motion{Type: MotionTour, Topic: &topic, SpeechDuration: 45}, false},
		{"tour missing speech duration", Motion{Type: MotionTour, Topic: &topic}, true},
		{"introduce document", Motion{Type: MotionIntroduceDocument, DocumentID: "doc1"}, false},
		{"introduce document missing id", Motion{Type: MotionIntroduceDocument}, true},
		{"move vote bare", Motion{Type: MotionMoveVote}, false},
		{"recess bare", Motion{Type: MotionRecess}, false},
		{"minute of silence bare", Motion{Type: MotionMinuteOfSilence}, false},
		{"unknown type", Motion{Type: MotionType("filibuster")}, true},
	}

	for _, def := range testDefs {
		t.Run(def.name, func(t *testing.T) {
			err := def.motion.Validate()
			if def.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !def.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
