package models

import (
	"errors"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNotFitted          = errors.New("model has not been fit")
	ErrTargetLenMismatch  = errors.New("target length does not match target rows")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrNoCoefficients     = errors.New("no model coefficients")
	ErrUnderdetermined    = errors.New("fewer observations than parameters to fit")
	ErrSingular           = errors.New("design matrix is rank deficient, features are collinear or constant")
	ErrFixedParameters    = errors.New("model parameters are fixed and cannot be fit")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
)
