// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"sync"
)

// Service wraps a pipeline for the HTTP layer: it serializes runs and
// remembers the most recent result.
type Service struct {
	locker   sync.RWMutex
	pipeline *Pipeline
	last     *Result
}

func NewService(pipeline *Pipeline) *Service {
	return &Service{pipeline: pipeline}
}

// Run executes one pass and records it as the latest.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	result, err := s.pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}

	s.locker.Lock()
	s.last = result
	s.locker.Unlock()
	return result, nil
}

// Latest returns the most recent pass, or nil when none has run yet.
func (s *Service) Latest() *Result {
	s.locker.RLock()
	defer s.locker.RUnlock()
	return s.last
}
