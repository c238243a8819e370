package loader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dasa.cc/primeview/dataset"
)

const exampleJSON = `{
  "kind": "lattice",
  "elements": [{"x": 0, "y": 0, "r": 1}, {"x": 5, "y": 3, "r": 1, "label": "5"}],
  "relations": {"0": [{"weight": 1, "targets": [1]}]}
}`

const exampleYAML = `
kind: scatter
elements:
  - {x: 1, y: 1, r: 0.5}
  - {x: 2, y: 4, r: 0.5}
relations:
  1:
    - weight: 2
      label: square
      targets: [0]
transform:
  shift: 1
  factor: 2
`

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func testDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "2.json", []byte(exampleJSON))
	writeFile(t, dir, "3.yaml", []byte(exampleYAML))
	writeFile(t, dir, "11.json.sz", snappy.Encode(nil, []byte(exampleJSON)))
	writeFile(t, dir, "bad.json", []byte(`{"kind": "lattice", "elements": [{"x": 0, "y": 0, "r": 1}], "relations": {"0": [{"weight": 1, "targets": [4]}]}}`))
	writeFile(t, dir, "README.md", []byte("not a dataset"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "7.json"), 0o755))
	return dir
}

func TestDirLoad(t *testing.T) {
	l := New(&DirSource{Dir: testDir(t)}, nil)
	ctx := context.Background()

	ds, err := l.Load(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindLattice, ds.Kind)
	assert.Equal(t, "2", ds.Selector)
	assert.Equal(t, []int{1}, ds.Relations[0][0].Targets)
	assert.Equal(t, "5", ds.Elements[1].Label)

	ds, err = l.Load(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindScatter, ds.Kind)
	require.NotNil(t, ds.Transform)
	require.NotNil(t, ds.Transform.Factor)
	assert.Equal(t, 2.0, *ds.Transform.Factor)
	assert.Equal(t, "square", ds.Relations[1][0].Label)

	ds, err = l.Load(ctx, "11")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestDirLoadErrors(t *testing.T) {
	l := New(&DirSource{Dir: testDir(t)}, nil)
	ctx := context.Background()

	for _, sel := range []string{"5", "", "../2", "a/b"} {
		_, err := l.Load(ctx, sel)
		assert.ErrorIs(t, err, ErrNotFound, "selector %q", sel)
	}

	_, err := l.Load(ctx, "bad")
	assert.ErrorIs(t, err, dataset.ErrInvalid)
}

func TestDirList(t *testing.T) {
	l := New(&DirSource{Dir: testDir(t)}, nil)
	ss, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "11", "bad"}, ss)

	_, err = New(&DirSource{Dir: filepath.Join(t.TempDir(), "missing")}, nil).List(context.Background())
	assert.Error(t, err)
}

func TestNeighbor(t *testing.T) {
	l := New(&DirSource{Dir: testDir(t)}, nil)
	ctx := context.Background()
	tests := []struct {
		from string
		d    int
		want string
	}{
		{"2", 1, "3"},
		{"3", 1, "11"},
		{"3", -1, "2"},
		{"2", -1, "2"},
		{"bad", 1, "bad"},
		{"unknown", 1, "2"},
	}
	for _, tt := range tests {
		have, err := l.Neighbor(ctx, tt.from, tt.d)
		require.NoError(t, err)
		assert.Equal(t, tt.want, have, "Neighbor(%q, %d)", tt.from, tt.d)
	}

	_, err := New(&DirSource{Dir: t.TempDir()}, nil).Neighbor(ctx, "2", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

// testS3 serves objects from a map.
type testS3 struct {
	objects map[string][]byte
	gets    []string
}

func (c *testS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	c.gets = append(c.gets, key)
	data, ok := c.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (c *testS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key := range c.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func TestS3(t *testing.T) {
	client := &testS3{objects: map[string][]byte{
		"primes/2.json":     []byte(exampleJSON),
		"primes/5.yml.sz":   snappy.Encode(nil, []byte(exampleYAML)),
		"primes/old/3.json": []byte(exampleJSON),
		"primes/notes.txt":  []byte("x"),
		"elsewhere/13.json": []byte(exampleJSON),
	}}
	l := New(&S3Source{Client: client, Bucket: "data", Prefix: "primes/"}, nil)
	ctx := context.Background()

	ds, err := l.Load(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindScatter, ds.Kind)
	assert.Equal(t, "primes/5.yml.sz", client.gets[len(client.gets)-1])

	_, err = l.Load(ctx, "13")
	assert.ErrorIs(t, err, ErrNotFound)

	ss, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "5"}, ss)
}

type failingS3 struct{ testS3 }

func (c *failingS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("access denied")
}

func TestS3Error(t *testing.T) {
	l := New(&S3Source{Client: &failingS3{}, Bucket: "data"}, nil)
	_, err := l.Load(context.Background(), "2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	src := &DirSource{Dir: dir}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 16)
	done := make(chan error, 1)
	report := func(s string) {
		select {
		case changed <- s:
		default:
		}
	}
	go func() { done <- src.Watch(ctx, nil, report) }()

	// the watcher may not be registered yet; keep writing until it reports
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case sel := <-changed:
			assert.Equal(t, "7", sel)
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			writeFile(t, dir, "7.json", []byte(exampleJSON))
			writeFile(t, dir, "notes.txt", []byte("x"))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
}
