package storage

import "testing"

func TestObjectURLRoundTripVirtualHosted(t *testing.T) {
	s := &s3Storage{bucketName: "pw-bucket", region: "us-west-2"}

	url := s.objectURL("uploads/1700000000000-certificates.zip")
	want := "https://pw-bucket.s3.us-west-2.amazonaws.com/uploads/1700000000000-certificates.zip"
	if url != want {
		t.Fatalf("objectURL = %q, want %q", url, want)
	}

	key, err := s.objectKeyFromURL(url)
	if err != nil {
		t.Fatalf("objectKeyFromURL returned error: %v", err)
	}
	if key != "uploads/1700000000000-certificates.zip" {
		t.Fatalf("objectKeyFromURL = %q", key)
	}
}

func TestObjectURLRoundTripPathStyle(t *testing.T) {
	s := &s3Storage{bucketName: "pw-bucket", region: "us-east-1", endpoint: "http://localhost:9000"}

	url := s.objectURL("uploads/1-a.zip")
	want := "http://localhost:9000/pw-bucket/uploads/1-a.zip"
	if url != want {
		t.Fatalf("objectURL = %q, want %q", url, want)
	}

	key, err := s.objectKeyFromURL(url)
	if err != nil {
		t.Fatalf("objectKeyFromURL returned error: %v", err)
	}
	if key != "uploads/1-a.zip" {
		t.Fatalf("objectKeyFromURL = %q", key)
	}
}

func TestObjectKeyFromURLRejectsEmptyKey(t *testing.T) {
	s := &s3Storage{bucketName: "pw-bucket", region: "us-west-2"}

	if _, err := s.objectKeyFromURL("https://pw-bucket.s3.us-west-2.amazonaws.com/"); err == nil {
		t.Fatal("expected an error for a URL without a key")
	}
}
