package file

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ghodss/yaml"
	goyaml "gopkg.in/yaml.v2"
	"tespkg.in/stash/pkg/store"
)

const (
	flushOnClose = "close"
)

// record is one entry of the yaml file.
type record struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// fa is a yaml file backed area for stash running stand alone
type fa struct {
	sync.RWMutex
	order    []string
	data     map[string]string
	filepath string
	// writeThrough persists the file on every mutation, otherwise on Close.
	writeThrough bool
}

var _ store.Area = (*fa)(nil)

func (s *fa) Get(key string) (string, error) {
	s.RLock()
	defer s.RUnlock()

	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", store.ErrNotFound
}

func (s *fa) Set(key, val string) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; !ok {
		s.order = append(s.order, key)
	}
	s.data[key] = val
	return s.persist()
}

func (s *fa) Delete(key string) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.persist()
}

func (s *fa) Keys() ([]string, error) {
	s.RLock()
	defer s.RUnlock()

	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys, nil
}

func (s *fa) Len() (int, error) {
	s.RLock()
	defer s.RUnlock()
	return len(s.order), nil
}

func (s *fa) Close() error {
	s.RLock()
	defer s.RUnlock()
	return s.write()
}

// persist must be called with the lock held.
func (s *fa) persist() error {
	if !s.writeThrough {
		return nil
	}
	return s.write()
}

func (s *fa) write() error {
	data, err := s.data2Yaml()
	if err != nil {
		return err
	}
	return os.WriteFile(s.filepath, data, 0644)
}

func (s *fa) data2Yaml() ([]byte, error) {
	recs := make([]record, 0, len(s.order))
	for _, k := range s.order {
		recs = append(recs, record{Key: k, Value: s.data[k]})
	}
	return yaml.Marshal(recs)
}

func (s *fa) yaml2Data(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	recs, err := readRecords(bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if _, ok := s.data[rec.Key]; !ok {
			s.order = append(s.order, rec.Key)
		}
		s.data[rec.Key] = rec.Value
	}
	return nil
}

func (s *fa) init(dsn string) error {
	s.data = make(map[string]string)
	path, vals, err := getFilePath(dsn)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	} else {
		err = s.yaml2Data(path)
		if err != nil {
			return err
		}
	}
	s.filepath = path
	s.writeThrough = vals.Get("flush") != flushOnClose
	return nil
}

// Area is a store.Area that can flush its content on Close.
type Area interface {
	store.Area
	io.Closer
}

// NewArea get a new file area, dsn is file://path/to/data.yaml[?flush=close]
func NewArea(dsn string) (Area, error) {
	s := &fa{}
	if err := s.init(dsn); err != nil {
		return nil, err
	}
	return s, nil
}

func getFilePath(dsn string) (string, url.Values, error) {
	dsn = strings.TrimPrefix(dsn, "file://")
	paths := strings.SplitN(dsn, "?", 2)
	var (
		path  string
		query url.Values
		err   error
	)
	if len(paths) >= 1 {
		path, err = filepath.Abs(paths[0])
		if err != nil {
			return "", nil, err
		}
	}
	if len(paths) >= 2 {
		query, err = url.ParseQuery(paths[1])
		if err != nil {
			return "", nil, err
		}
	}
	return path, query, nil
}

// readRecords reads every yaml document of r, each a list of records.
func readRecords(r io.Reader) ([]record, error) {
	dec := goyaml.NewDecoder(r)
	var res [][]byte
	for {
		var value interface{}
		err := dec.Decode(&value)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		valueBytes, err := goyaml.Marshal(value)
		if err != nil {
			return nil, err
		}
		res = append(res, valueBytes)
	}

	recs := []record{}
	for _, out := range res {
		var doc []record
		if err := yaml.Unmarshal(out, &doc); err != nil {
			return nil, err
		}
		recs = append(recs, doc...)
	}
	return recs, nil
}
