// Package tracker defines Trackers, which track and save data
// generated while evaluating agents
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/layouteval/timestep"
)

// Tracker keeps track of evaluation data and saves the data after the
// evaluation has finished. Track is called with every TimeStep of an
// episode, starting with the First TimeStep returned by Reset.
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// Save encodes data to a file with encoding/gob
func Save(filename string, data interface{}) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("save: could not encode data: %v", err)
	}
	return file.Close()
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %v", err)
	}
	defer file.Close()

	// Create the decoder and the variable to store the data in
	dec := gob.NewDecoder(file)
	var data []float64

	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %v", err)
	}
	return data, nil
}
