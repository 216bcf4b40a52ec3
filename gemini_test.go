package coverpick

import "testing"

func TestAspectRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size string
		want string
	}{
		{GenerativeSize, "16:9"},
		{"1024x1024", "1:1"},
		{"1024x768", "4:3"},
		{"768x1024", "3:4"},
		{"1024X1792", "9:16"},
		{"", "16:9"},
		{"wide", "16:9"},
		{"0x100", "16:9"},
	}
	for _, tc := range tests {
		if got := aspectRatio(tc.size); got != tc.want {
			t.Errorf("aspectRatio(%q) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestPromptParts(t *testing.T) {
	t.Parallel()

	parts, err := promptParts(CompletionRequest{Prompt: "hi"})
	if err != nil || len(parts) != 1 || parts[0].Text != "hi" {
		t.Fatalf("text only = %+v, %v", parts, err)
	}

	parts, err = promptParts(CompletionRequest{Prompt: "hi", Image: &ImageInput{Data: []byte("JPEG"), MIMEType: "image/jpeg"}})
	if err != nil || len(parts) != 2 || parts[1].InlineData == nil || string(parts[1].InlineData.Data) != "JPEG" {
		t.Fatalf("inline bytes = %+v, %v", parts, err)
	}

	parts, err = promptParts(CompletionRequest{Prompt: "hi", Image: &ImageInput{URL: EncodeDataURL([]byte("PNG"), "image/png")}})
	if err != nil || len(parts) != 2 || parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/png" {
		t.Fatalf("data URL = %+v, %v", parts, err)
	}

	if _, err := promptParts(CompletionRequest{Prompt: "hi", Image: &ImageInput{URL: "https://img.example/a.jpg"}}); err == nil {
		t.Error("expected error for a remote image URL")
	}
}
