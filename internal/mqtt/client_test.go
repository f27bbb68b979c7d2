package mqtt

import "testing"

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"helmet/telemetry", "helmet/telemetry", true},
		{"helmet/+/telemetry", "helmet/h-001/telemetry", true},
		{"helmet/+/telemetry", "helmet/h-001/status", false},
		{"helmet/+/telemetry", "helmet/telemetry", false},
		{"helmet/telemetry", "helmet/telemetry/extra", false},
		{"+/+", "a/b", true},
		{"+", "a/b", false},
	}

	for _, tt := range tests {
		if got := topicMatches(tt.pattern, tt.topic); got != tt.want {
			t.Errorf("topicMatches(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
		}
	}
}

func TestSplitTopic(t *testing.T) {
	parts := splitTopic("helmet/h-001/telemetry")
	if len(parts) != 3 || parts[0] != "helmet" || parts[1] != "h-001" || parts[2] != "telemetry" {
		t.Errorf("unexpected parts %v", parts)
	}

	if parts := splitTopic("single"); len(parts) != 1 || parts[0] != "single" {
		t.Errorf("unexpected parts %v", parts)
	}
}
