package streaming

import (
	"context"
	"fmt"

	"github.com/agristream/platform/pkg/common/kafka"
)

// TopicPath addresses a notification topic within the hosting project, the
// same way the platform's fully-qualified topic paths do.
func TopicPath(projectID, topic string) string {
	return fmt.Sprintf("%s.%s", projectID, topic)
}

// TopicNotifier publishes ingestion outcomes to the project's success and
// error topics. The object name travels as the file_name metadata header.
type TopicNotifier struct {
	success *kafka.Producer
	failure *kafka.Producer
}

func NewTopicNotifier(success, failure *kafka.Producer) *TopicNotifier {
	return &TopicNotifier{success: success, failure: failure}
}

func (n *TopicNotifier) Success(ctx context.Context, objectName, message string) error {
	return n.success.Publish(ctx, []byte(message), map[string]string{"file_name": objectName})
}

func (n *TopicNotifier) Error(ctx context.Context, objectName, message string) error {
	return n.failure.Publish(ctx, []byte(message), map[string]string{"file_name": objectName})
}
