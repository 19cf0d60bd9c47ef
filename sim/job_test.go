package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_Weight_IsProductOfDemandAndDuration(t *testing.T) {
	j := Job{ID: 1, Cores: 3, Memory: 4, ExecutionTime: 5}
	assert.Equal(t, int64(60), j.Weight())
}

func TestJob_Validate_RejectsEachMalformedField(t *testing.T) {
	valid := Job{ID: 1, ArrivalTime: 0, Cores: 1, Memory: 1, ExecutionTime: 1}
	tests := []struct {
		name  string
		job   Job
		field string
	}{
		{"zero id", Job{ID: 0, Cores: 1, Memory: 1, ExecutionTime: 1}, "id"},
		{"negative arrival", Job{ID: 1, ArrivalTime: -1, Cores: 1, Memory: 1, ExecutionTime: 1}, "arrival_time"},
		{"zero cores", Job{ID: 1, Cores: 0, Memory: 1, ExecutionTime: 1}, "cores"},
		{"negative memory", Job{ID: 1, Cores: 1, Memory: -2, ExecutionTime: 1}, "memory"},
		{"zero duration", Job{ID: 1, Cores: 1, Memory: 1, ExecutionTime: 0}, "execution_time"},
	}
	require.NoError(t, valid.Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.job.Validate()
			var invalid *InvalidJobError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.field, invalid.Field)
			assert.True(t, errors.Is(err, ErrInvalidJobSpec))
		})
	}
}

func TestValidateJobs_ReportsEveryInvalidJob(t *testing.T) {
	// GIVEN two malformed jobs and a duplicate id among valid ones
	jobs := []Job{
		{ID: 1, Cores: 1, Memory: 1, ExecutionTime: 1},
		{ID: 2, Cores: 0, Memory: 1, ExecutionTime: 1},
		{ID: 3, Cores: 1, Memory: 1, ExecutionTime: -4},
		{ID: 1, Cores: 1, Memory: 1, ExecutionTime: 1},
	}

	// WHEN validated
	err := ValidateJobs(jobs)

	// THEN all three problems are reported and the error matches the sentinel
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidJobSpec)
	assert.Contains(t, err.Error(), "job 2: cores")
	assert.Contains(t, err.Error(), "job 3: execution_time")
	assert.Contains(t, err.Error(), "job 1: id duplicate id")
}

func TestValidateJobs_EmptyAndValid_ReturnNil(t *testing.T) {
	assert.NoError(t, ValidateJobs(nil))
	assert.NoError(t, ValidateJobs(NewJobs([][4]int64{{0, 1, 1, 1}, {3, 2, 2, 2}})))
}

func TestNewJobs_AssignsSequentialIDs(t *testing.T) {
	jobs := NewJobs([][4]int64{{5, 1, 2, 3}, {0, 4, 5, 6}})
	require.Len(t, jobs, 2)
	assert.Equal(t, Job{ID: 1, ArrivalTime: 5, Cores: 1, Memory: 2, ExecutionTime: 3}, jobs[0])
	assert.Equal(t, Job{ID: 2, ArrivalTime: 0, Cores: 4, Memory: 5, ExecutionTime: 6}, jobs[1])
}
