// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateModelSettings(&settings.Model); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateClassifierSettings(&settings.Classifier); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateCaptureSettings(&settings.Capture); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateModelSettings validates the classification model settings
func validateModelSettings(settings *ModelSettings) error {
	var errs []string

	if settings.Path == "" {
		errs = append(errs, "model path must not be empty")
	}
	if settings.InputSize <= 0 {
		errs = append(errs, "model input size must be a positive number of pixels")
	}
	if settings.Threads < 0 {
		errs = append(errs, "model threads must be 0 (automatic) or a positive count")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// validateClassifierSettings validates the classifier behavior settings
func validateClassifierSettings(settings *ClassifierSettings) error {
	if settings.FallbackThresholdBytes <= 0 {
		return fmt.Errorf("classifier fallback threshold must be a positive byte count")
	}
	return nil
}

// validateCaptureSettings validates the capture device and storage settings
func validateCaptureSettings(settings *CaptureSettings) error {
	var errs []string

	if settings.BinID == "" {
		errs = append(errs, "capture binid must not be empty")
	}
	if settings.Path == "" {
		errs = append(errs, "capture path must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// validateOutputSettings validates the record store settings
func validateOutputSettings(settings *OutputSettings) error {
	var errs []string

	if !settings.SQLite.Enabled && !settings.MySQL.Enabled {
		errs = append(errs, "at least one of output.sqlite or output.mysql must be enabled")
	}
	if settings.SQLite.Enabled && settings.SQLite.Path == "" {
		errs = append(errs, "output.sqlite.path must not be empty when SQLite is enabled")
	}
	if settings.MySQL.Enabled {
		if settings.MySQL.Host == "" {
			errs = append(errs, "output.mysql.host must not be empty when MySQL is enabled")
		}
		if settings.MySQL.Database == "" {
			errs = append(errs, "output.mysql.database must not be empty when MySQL is enabled")
		}
		if err := validatePort(settings.MySQL.Port); err != nil {
			errs = append(errs, fmt.Sprintf("output.mysql.port: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// validateWebServerSettings validates the HTTP server settings
func validateWebServerSettings(settings *WebServerSettings) error {
	if settings.Enabled {
		if err := validatePort(settings.Port); err != nil {
			return fmt.Errorf("webserver port: %w", err)
		}
	}
	return nil
}

// validateMQTTSettings validates the MQTT settings
func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}

	var errs []string

	if settings.Broker == "" {
		errs = append(errs, "mqtt broker must not be empty when MQTT is enabled")
	} else if u, err := url.Parse(settings.Broker); err != nil || u.Host == "" {
		errs = append(errs, fmt.Sprintf("mqtt broker %q is not a valid URL", settings.Broker))
	}
	if settings.Topic == "" {
		errs = append(errs, "mqtt topic must not be empty when MQTT is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePort(port string) error {
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%q is not a valid port number", port)
	}
	return nil
}
