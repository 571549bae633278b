package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetOpportunityID(ctx *gin.Context) (uint64, error) {
	var err error

	opportunityIDStr := ctx.Param("opportunity_id")

	if opportunityIDStr == "" {
		return 0, errors.New("Opportunity ID not found")
	}

	opportunityID, err := strconv.ParseUint(opportunityIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Opportunity ID")
	}

	return opportunityID, nil
}

func GetApplicationID(ctx *gin.Context) (uint64, error) {
	var err error

	applicationIDStr := ctx.Param("application_id")

	if applicationIDStr == "" {
		return 0, errors.New("Application ID not found")
	}

	applicationID, err := strconv.ParseUint(applicationIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Application ID")
	}

	return applicationID, nil
}

func GetNotificationID(ctx *gin.Context) (uint64, error) {
	var err error

	notificationIDStr := ctx.Param("notification_id")

	if notificationIDStr == "" {
		return 0, errors.New("Notification ID not found")
	}

	notificationID, err := strconv.ParseUint(notificationIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Notification ID")
	}

	return notificationID, nil
}
